package domain

import "time"

// Step is what the intake conversation is currently waiting for
type Step string

const (
	StepAwaitRecipient Step = "await_recipient"
	StepAwaitQuantity  Step = "await_quantity"
	StepAwaitPeriod    Step = "await_period"
	StepAwaitAmount    Step = "await_amount"
	StepAwaitPayment   Step = "await_payment"
)

// Steps returns the ordered conversation steps for an order kind
func (k Kind) Steps() []Step {
	switch k {
	case KindStars:
		return []Step{StepAwaitRecipient, StepAwaitQuantity, StepAwaitPayment}
	case KindPremium:
		return []Step{StepAwaitRecipient, StepAwaitPeriod, StepAwaitPayment}
	case KindExchange:
		return []Step{StepAwaitAmount, StepAwaitPayment}
	}
	return nil
}

// HasStep reports whether step belongs to the conversation for k
func (k Kind) HasStep(step Step) bool {
	for _, s := range k.Steps() {
		if s == step {
			return true
		}
	}
	return false
}

// StepAfter returns the step following current for k, or "" when none does
func (k Kind) StepAfter(current Step) Step {
	steps := k.Steps()
	for i, s := range steps {
		if s == current && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return ""
}

// Draft accumulates order fields collected so far
type Draft struct {
	Kind         Kind
	Recipient    string
	Quantity     int
	Period       string
	SourceAmount float64
	Quote        Quote
}

// Details builds the order payload from the collected fields
func (d Draft) Details() Details {
	switch d.Kind {
	case KindStars:
		return StarsDetails{Quantity: d.Quantity}
	case KindPremium:
		return PremiumDetails{Period: d.Period}
	case KindExchange:
		return ExchangeDetails{SourceAmount: d.SourceAmount}
	}
	return nil
}

// Session is the per-user state of an in-progress intake conversation
type Session struct {
	Step      Step
	Draft     Draft
	UpdatedAt time.Time
}

// Consistent reports whether the step is reachable for the draft's kind
func (s Session) Consistent() bool {
	return s.Draft.Kind.HasStep(s.Step)
}
