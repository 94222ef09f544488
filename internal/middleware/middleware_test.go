package middleware

import (
	"errors"
	"testing"

	"digistore/internal/domain"
	"digistore/internal/service"
	"digistore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func newTestContext(t *testing.T, update tele.Update) tele.Context {
	t.Helper()

	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot.NewContext(update)
}

func messageUpdate(sender *tele.User) tele.Update {
	return tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: sender,
			Chat:   &tele.Chat{ID: 1},
			Text:   "hello",
		},
	}
}

func TestRegisterUserMiddleware(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("EnsureUserExists", mock.Anything, domain.User{
		ID:          42,
		Username:    "alice",
		DisplayName: "Alice Smith",
	}).Return(nil)

	auth := service.NewAuthService(mockRepo, nil)
	mw := RegisterUserMiddleware(auth, testutil.NewTestLogger())

	called := false
	handler := mw(func(c tele.Context) error {
		called = true
		return nil
	})

	c := newTestContext(t, messageUpdate(&tele.User{ID: 42, Username: "alice", FirstName: "Alice", LastName: "Smith"}))
	assert.NoError(t, handler(c))
	assert.True(t, called)
	mockRepo.AssertExpectations(t)
}

func TestRegisterUserMiddleware_RegistryFailureStillHandles(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("EnsureUserExists", mock.Anything, mock.Anything).Return(errors.New("db down"))

	auth := service.NewAuthService(mockRepo, nil)
	mw := RegisterUserMiddleware(auth, testutil.NewTestLogger())

	called := false
	handler := mw(func(c tele.Context) error {
		called = true
		return nil
	})

	c := newTestContext(t, messageUpdate(&tele.User{ID: 42}))
	assert.NoError(t, handler(c))
	assert.True(t, called)
}

func TestRegisterUserMiddleware_NoSender(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	auth := service.NewAuthService(mockRepo, nil)
	mw := RegisterUserMiddleware(auth, testutil.NewTestLogger())

	handler := mw(func(c tele.Context) error { return nil })

	c := newTestContext(t, tele.Update{ID: 2})
	assert.NoError(t, handler(c))
	mockRepo.AssertNotCalled(t, "EnsureUserExists", mock.Anything, mock.Anything)
}

func TestRecoverMiddleware(t *testing.T) {
	mw := RecoverMiddleware(testutil.NewTestLogger())
	handler := mw(func(c tele.Context) error {
		panic("boom")
	})

	c := newTestContext(t, messageUpdate(&tele.User{ID: 1}))

	var err error
	assert.NotPanics(t, func() { err = handler(c) })
	assert.ErrorContains(t, err, "boom")
}

func TestLoggerMiddleware_PassesError(t *testing.T) {
	expected := errors.New("handler failed")
	mw := LoggerMiddleware(testutil.NewTestLogger())
	handler := mw(func(c tele.Context) error { return expected })

	c := newTestContext(t, messageUpdate(&tele.User{ID: 1}))
	assert.ErrorIs(t, handler(c), expected)
}
