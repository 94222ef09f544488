package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the kind of purchasable item an order is for
type Kind string

const (
	KindStars    Kind = "stars"
	KindPremium  Kind = "premium"
	KindExchange Kind = "exchange"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindStars, KindPremium, KindExchange:
		return true
	}
	return false
}

// NeedsRecipient reports whether orders of this kind are delivered to a handle
func (k Kind) NeedsRecipient() bool {
	return k == KindStars || k == KindPremium
}

// PaymentMethod is how the user pays for an order
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCrypto PaymentMethod = "cryptobot"
)

// Status is the lifecycle status of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusWaiting   Status = "waiting"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{StatusPending, StatusWaiting, StatusPaid, StatusCompleted, StatusCancelled}

// transitions maps a target status to the statuses it may be entered from
var transitions = map[Status][]Status{
	StatusWaiting:   {StatusPending},
	StatusPaid:      {StatusWaiting},
	StatusCompleted: {StatusPaid},
	StatusCancelled: {StatusPending, StatusWaiting, StatusPaid},
}

// SourcesFor returns the statuses from which an order may move to target.
// The result is empty for targets that can never be entered by a transition.
func SourcesFor(target Status) []Status {
	src := transitions[target]
	out := make([]Status, len(src))
	copy(out, src)
	return out
}

// CanTransition reports whether the edge s -> target exists
func (s Status) CanTransition(target Status) bool {
	for _, from := range transitions[target] {
		if from == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Action is an administrator action on an order
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Target returns the status an action moves the order to
func (a Action) Target() Status {
	switch a {
	case ActionConfirm:
		return StatusPaid
	case ActionComplete:
		return StatusCompleted
	case ActionCancel:
		return StatusCancelled
	}
	return ""
}

// NextActions returns the administrator actions valid for an order in status s
func (s Status) NextActions() []Action {
	var actions []Action
	for _, a := range []Action{ActionConfirm, ActionComplete, ActionCancel} {
		if s.CanTransition(a.Target()) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Details is the kind-specific payload of an order.
// Implemented by StarsDetails, PremiumDetails and ExchangeDetails only.
type Details interface {
	Kind() Kind
	isDetails()
}

// StarsDetails is the payload of a stars order
type StarsDetails struct {
	Quantity int `json:"quantity"`
}

// PremiumDetails is the payload of a premium order
type PremiumDetails struct {
	Period string `json:"period"`
}

// ExchangeDetails is the payload of a currency exchange order
type ExchangeDetails struct {
	SourceAmount float64 `json:"source_amount"`
}

func (StarsDetails) Kind() Kind    { return KindStars }
func (PremiumDetails) Kind() Kind  { return KindPremium }
func (ExchangeDetails) Kind() Kind { return KindExchange }

func (StarsDetails) isDetails()    {}
func (PremiumDetails) isDetails()  {}
func (ExchangeDetails) isDetails() {}

// EncodeDetails serializes the payload; the kind is stored alongside it
func EncodeDetails(d Details) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("nil order details")
	}
	return json.Marshal(d)
}

// DecodeDetails restores a payload previously produced by EncodeDetails
func DecodeDetails(kind Kind, raw []byte) (Details, error) {
	switch kind {
	case KindStars:
		var d StarsDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode stars details: %w", err)
		}
		return d, nil
	case KindPremium:
		var d PremiumDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode premium details: %w", err)
		}
		return d, nil
	case KindExchange:
		var d ExchangeDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode exchange details: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown order kind %q", kind)
}

// Order represents a single purchase or exchange request
type Order struct {
	ID            int64
	OwnerID       int64
	Kind          Kind
	Recipient     string
	Details       Details
	AmountRUB     float64
	AmountUSD     float64
	PaymentMethod PaymentMethod
	Status        Status
	CreatedAt     time.Time
	PaidAt        *time.Time
	CompletedAt   *time.Time
}

// Apply moves the order to target at the given moment.
// Timestamps are set only when entering paid or completed.
func (o *Order) Apply(target Status, at time.Time) error {
	if !o.Status.CanTransition(target) {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: target}
	}
	o.Status = target
	switch target {
	case StatusPaid:
		o.PaidAt = &at
	case StatusCompleted:
		o.CompletedAt = &at
	}
	return nil
}

// Stats is an aggregate projection over users and orders
type Stats struct {
	TotalUsers          int
	CompletedOrders     int
	CompletedRevenueRUB float64
	PendingOrders       int
	PaidOrders          int
}

// PremiumPrice is the price of one premium period
type PremiumPrice struct {
	Name string  `yaml:"name"`
	RUB  float64 `yaml:"rub"`
	USD  float64 `yaml:"usd"`
}

// PriceList holds the static rates and prices orders are priced with
type PriceList struct {
	StarRate float64                 `yaml:"star_rate"`
	USDRate  float64                 `yaml:"usd_rate"`
	Premium  map[string]PremiumPrice `yaml:"premium"`
	// PremiumOrder fixes the display order of premium periods
	PremiumOrder []string `yaml:"premium_order"`
}

// Quote is a priced amount in both currencies
type Quote struct {
	RUB float64
	USD float64
}
