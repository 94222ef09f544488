package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"digistore/internal/domain"
	"digistore/internal/session"

	"go.uber.org/zap"
)

// OrderCreator hands a completed draft over to the ledger
type OrderCreator interface {
	CreateOrder(ctx context.Context, ownerID int64, draft domain.Draft, method domain.PaymentMethod) (*domain.Order, error)
}

// ReplyKind tells the transport what to render after an intake step
type ReplyKind int

const (
	// ReplyMenu means there is no conversation in progress
	ReplyMenu ReplyKind = iota
	// ReplyPrompt asks for the input named by Reply.Step
	ReplyPrompt
	// ReplyRetry repeats the current step with Reply.Reason
	ReplyRetry
	// ReplyOrderCreated carries the new order in Reply.Order
	ReplyOrderCreated
	// ReplyAlternateUnavailable is the placeholder for the alternate payment rail
	ReplyAlternateUnavailable
)

// Reply is the outcome of one intake event
type Reply struct {
	Kind   ReplyKind
	Step   domain.Step
	Draft  domain.Draft
	Order  *domain.Order
	Reason string
}

// IntakeService runs the per-user order intake conversation
type IntakeService struct {
	sessions         *session.Store
	pricer           *Pricer
	orders           OrderCreator
	alternateEnabled bool
	logger           *zap.Logger
}

// NewIntakeService creates a new intake service
func NewIntakeService(sessions *session.Store, pricer *Pricer, orders OrderCreator, alternateEnabled bool, logger *zap.Logger) *IntakeService {
	return &IntakeService{
		sessions:         sessions,
		pricer:           pricer,
		orders:           orders,
		alternateEnabled: alternateEnabled,
		logger:           logger,
	}
}

// AlternateEnabled reports whether the alternate payment option is offered
func (s *IntakeService) AlternateEnabled() bool {
	return s.alternateEnabled
}

// Begin starts a new conversation for kind, replacing any conversation in progress
func (s *IntakeService) Begin(userID int64, kind domain.Kind) (Reply, error) {
	if !kind.Valid() {
		return Reply{}, fmt.Errorf("unknown order kind %q", kind)
	}

	unlock := s.sessions.Lock(userID)
	defer unlock()

	sess := domain.Session{
		Step:  kind.Steps()[0],
		Draft: domain.Draft{Kind: kind},
	}
	s.sessions.Set(userID, sess)

	s.logger.Debug("Intake started",
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
	)
	return Reply{Kind: ReplyPrompt, Step: sess.Step, Draft: sess.Draft}, nil
}

// HandleText feeds a free-text message into the conversation
func (s *IntakeService) HandleText(userID int64, text string) (Reply, error) {
	unlock := s.sessions.Lock(userID)
	defer unlock()

	sess, ok := s.current(userID)
	if !ok {
		return Reply{Kind: ReplyMenu}, nil
	}

	draft := sess.Draft
	switch sess.Step {
	case domain.StepAwaitRecipient:
		recipient := strings.TrimPrefix(strings.TrimSpace(text), "@")
		if recipient == "" {
			return retry(sess, "укажите юзернейм получателя"), nil
		}
		draft.Recipient = recipient

	case domain.StepAwaitQuantity:
		quantity, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return retry(sess, "введите число"), nil
		}
		quote, err := s.pricer.Stars(quantity)
		if err != nil {
			return s.retryOrFail(userID, sess, err)
		}
		draft.Quantity = quantity
		draft.Quote = quote

	case domain.StepAwaitAmount:
		amount, err := parseAmount(text)
		if err != nil {
			return s.retryOrFail(userID, sess, err)
		}
		quote, err := s.pricer.Exchange(amount)
		if err != nil {
			return s.retryOrFail(userID, sess, err)
		}
		draft.SourceAmount = amount
		draft.Quote = quote

	default:
		return retry(sess, "выберите вариант кнопкой"), nil
	}

	return s.advance(userID, sess, draft), nil
}

// SelectPeriod handles a premium period selection
func (s *IntakeService) SelectPeriod(userID int64, period string) (Reply, error) {
	unlock := s.sessions.Lock(userID)
	defer unlock()

	sess, ok := s.current(userID)
	if !ok {
		return Reply{Kind: ReplyMenu}, nil
	}
	if sess.Step != domain.StepAwaitPeriod {
		return retry(sess, "этот выбор сейчас недоступен"), nil
	}

	quote, err := s.pricer.Premium(period)
	if err != nil {
		s.sessions.Clear(userID)
		s.logger.Error("Premium period missing from price list",
			zap.Int64("user_id", userID),
			zap.String("period", period),
			zap.Error(err),
		)
		return Reply{}, err
	}

	draft := sess.Draft
	draft.Period = period
	draft.Quote = quote
	return s.advance(userID, sess, draft), nil
}

// SelectPayment finishes the conversation by choosing a payment method
func (s *IntakeService) SelectPayment(ctx context.Context, userID int64, method domain.PaymentMethod) (Reply, error) {
	unlock := s.sessions.Lock(userID)
	defer unlock()

	sess, ok := s.current(userID)
	if !ok {
		return Reply{Kind: ReplyMenu}, nil
	}
	if sess.Step != domain.StepAwaitPayment {
		return retry(sess, "этот выбор сейчас недоступен"), nil
	}

	switch method {
	case domain.PaymentCard:
	case domain.PaymentCrypto:
		return Reply{Kind: ReplyAlternateUnavailable, Step: sess.Step, Draft: sess.Draft}, nil
	default:
		return Reply{}, fmt.Errorf("unknown payment method %q", method)
	}

	order, err := s.orders.CreateOrder(ctx, userID, sess.Draft, method)
	s.sessions.Clear(userID)
	if err != nil {
		s.logger.Error("Failed to create order",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return Reply{}, err
	}

	return Reply{Kind: ReplyOrderCreated, Draft: sess.Draft, Order: order}, nil
}

// Reset drops any conversation in progress
func (s *IntakeService) Reset(userID int64) {
	unlock := s.sessions.Lock(userID)
	defer unlock()

	s.sessions.Clear(userID)
}

// current returns the user's session, discarding one whose step does not belong to its kind
func (s *IntakeService) current(userID int64) (domain.Session, bool) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return domain.Session{}, false
	}
	if !sess.Consistent() {
		s.logger.Warn("Discarding inconsistent session",
			zap.Int64("user_id", userID),
			zap.String("kind", string(sess.Draft.Kind)),
			zap.String("step", string(sess.Step)),
		)
		s.sessions.Clear(userID)
		return domain.Session{}, false
	}
	return sess, true
}

func (s *IntakeService) advance(userID int64, sess domain.Session, draft domain.Draft) Reply {
	sess.Draft = draft
	sess.Step = draft.Kind.StepAfter(sess.Step)
	s.sessions.Set(userID, sess)
	return Reply{Kind: ReplyPrompt, Step: sess.Step, Draft: sess.Draft}
}

func (s *IntakeService) retryOrFail(userID int64, sess domain.Session, err error) (Reply, error) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return retry(sess, inputErr.Reason), nil
	}
	s.sessions.Clear(userID)
	return Reply{}, err
}

func retry(sess domain.Session, reason string) Reply {
	return Reply{Kind: ReplyRetry, Step: sess.Step, Draft: sess.Draft, Reason: reason}
}

// parseAmount accepts both "150.5" and "150,5"
func parseAmount(text string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	normalized = strings.Replace(normalized, ",", ".", 1)

	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, domain.NewInputError("введите сумму числом")
	}
	return amount, nil
}
