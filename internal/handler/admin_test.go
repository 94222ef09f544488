package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAdminCommand(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expected      adminCommand
		expectedOK    bool
		expectedError bool
	}{
		{
			name:       "check",
			input:      "/check_12",
			expected:   adminCommand{Verb: "check", OrderID: 12},
			expectedOK: true,
		},
		{
			name:       "confirm with bot name",
			input:      "/confirm_7@digi_store_bot",
			expected:   adminCommand{Verb: "confirm", OrderID: 7},
			expectedOK: true,
		},
		{
			name:       "complete with trailing text",
			input:      "/complete_3 done",
			expected:   adminCommand{Verb: "complete", OrderID: 3},
			expectedOK: true,
		},
		{
			name:       "cancel",
			input:      "/cancel_44",
			expected:   adminCommand{Verb: "cancel", OrderID: 44},
			expectedOK: true,
		},
		{
			name:          "missing id",
			input:         "/confirm",
			expected:      adminCommand{Verb: "confirm"},
			expectedOK:    true,
			expectedError: true,
		},
		{
			name:          "non-numeric id",
			input:         "/cancel_abc",
			expected:      adminCommand{Verb: "cancel"},
			expectedOK:    true,
			expectedError: true,
		},
		{
			name:       "unknown command",
			input:      "/help",
			expectedOK: false,
		},
		{
			name:       "unknown verb with id",
			input:      "/refund_12",
			expectedOK: false,
		},
		{
			name:       "plain text",
			input:      "check_12",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok, err := parseAdminCommand(tt.input)

			assert.Equal(t, tt.expectedOK, ok)
			if !tt.expectedOK {
				return
			}
			assert.Equal(t, tt.expected, cmd)
			if tt.expectedError {
				assert.ErrorIs(t, err, errCommandFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
