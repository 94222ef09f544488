// Package notify delivers order notifications to users and administrators.
// Delivery is best effort: failures are reported in a Result, never retried.
package notify

import (
	"context"
	"errors"
	"fmt"

	"digistore/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of the bot API the notifier needs
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Failure is a single undelivered message
type Failure struct {
	UserID int64
	Err    error
}

// Result describes the outcome of one notification
type Result struct {
	Attempted int
	Failures  []Failure
}

// OK reports whether every attempted message was delivered
func (r Result) OK() bool {
	return len(r.Failures) == 0
}

// Delivered returns the number of messages that went through
func (r Result) Delivered() int {
	return r.Attempted - len(r.Failures)
}

// Err joins delivery failures into one error, nil when all succeeded
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("user %d: %w", f.UserID, f.Err))
	}
	return errors.Join(errs...)
}

// Telegram sends notifications through the bot
type Telegram struct {
	sender Sender
	admins []int64
	logger *zap.Logger
}

// NewTelegram creates a new Telegram notifier
func NewTelegram(sender Sender, admins []int64, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender: sender,
		admins: admins,
		logger: logger,
	}
}

// OrderStatusChanged tells the order owner about the order's new status
func (t *Telegram) OrderStatusChanged(ctx context.Context, order *domain.Order) Result {
	text, ok := statusMessage(order)
	if !ok {
		return Result{}
	}
	var res Result
	t.deliver(ctx, &res, order.OwnerID, text)
	return res
}

// OrderAwaitingReview tells every administrator that an order waits for verification
func (t *Telegram) OrderAwaitingReview(ctx context.Context, order *domain.Order, requester domain.User) Result {
	var res Result
	if len(t.admins) == 0 {
		t.logger.Warn("No administrators configured, review request not delivered",
			zap.Int64("order_id", order.ID),
		)
		return res
	}

	text := reviewMessage(order, requester)
	for _, adminID := range t.admins {
		t.deliver(ctx, &res, adminID, text)
	}
	return res
}

func (t *Telegram) deliver(ctx context.Context, res *Result, userID int64, text string) {
	res.Attempted++

	if err := ctx.Err(); err != nil {
		res.Failures = append(res.Failures, Failure{UserID: userID, Err: err})
		return
	}

	if _, err := t.sender.Send(tele.ChatID(userID), text); err != nil {
		t.logger.Warn("Failed to deliver notification",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		res.Failures = append(res.Failures, Failure{UserID: userID, Err: err})
	}
}

func statusMessage(order *domain.Order) (string, bool) {
	switch order.Status {
	case domain.StatusPaid:
		return fmt.Sprintf("✅ Заказ #%d оплачен!\n\n"+
			"Админ подтвердил получение оплаты.\n"+
			"Ваш товар будет доставлен в течение 15 минут.", order.ID), true
	case domain.StatusCompleted:
		return fmt.Sprintf("🎉 Заказ #%d выполнен!\n\n"+
			"Товар успешно доставлен.\n"+
			"Спасибо за покупку! 🛍️", order.ID), true
	case domain.StatusCancelled:
		return fmt.Sprintf("❌ Заказ #%d отменен\n\n"+
			"Админ отменил ваш заказ.\n"+
			"Если вы уже оплатили, свяжитесь с поддержкой.", order.ID), true
	}
	return "", false
}

func reviewMessage(order *domain.Order, requester domain.User) string {
	recipient := order.Recipient
	if recipient == "" {
		recipient = "—"
	}
	return fmt.Sprintf("🆕 Ожидает проверки\n\n"+
		"🆔 Заказ: #%d\n"+
		"👤 Пользователь: %s\n"+
		"🆔 ID: %d\n"+
		"💰 Сумма: %.2f RUB\n"+
		"📦 Тип: %s\n"+
		"👤 Получатель: %s\n\n"+
		"Для проверки: /check_%d",
		order.ID, requester.Handle(), requester.ID, order.AmountRUB, order.Kind, recipient, order.ID)
}
