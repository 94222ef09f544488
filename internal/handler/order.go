package handler

import (
	"errors"
	"strings"

	"digistore/internal/domain"
	"digistore/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func (h *Handler) handleBuyStars(c tele.Context) error {
	return h.beginIntake(c, domain.KindStars)
}

func (h *Handler) handleBuyPremium(c tele.Context) error {
	return h.beginIntake(c, domain.KindPremium)
}

func (h *Handler) handleExchange(c tele.Context) error {
	return h.beginIntake(c, domain.KindExchange)
}

func (h *Handler) beginIntake(c tele.Context, kind domain.Kind) error {
	reply, err := h.intakeService.Begin(c.Sender().ID, kind)
	if err != nil {
		h.logger.Error("Failed to start intake", zap.Error(err))
		return h.editOrSend(c, textGenericError, backMarkup())
	}
	return h.sendReply(c, reply)
}

// handleText handles all text messages
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if strings.HasPrefix(text, "/") {
		cmd, ok, err := parseAdminCommand(text)
		if !ok {
			// Unknown commands are ignored
			return nil
		}
		if err != nil {
			return c.Send(formatHint(cmd.Verb))
		}
		return h.handleAdminCommand(c, cmd)
	}

	reply, err := h.intakeService.HandleText(userID, text)
	if err != nil {
		h.logger.Error("Failed to handle intake message",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return c.Send(textGenericError, backMarkup())
	}
	return h.sendReply(c, reply)
}

// handlePremiumPeriod handles a premium period button
func (h *Handler) handlePremiumPeriod(c tele.Context) error {
	userID := c.Sender().ID
	period := cleanCallbackData(c.Callback().Data)

	reply, err := h.intakeService.SelectPeriod(userID, period)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPeriod) {
			h.logger.Error("Premium period button points to unknown period",
				zap.String("period", period),
				zap.Error(err),
			)
		}
		return h.editOrSend(c, textGenericError, backMarkup())
	}
	return h.sendReply(c, reply)
}

func (h *Handler) handlePayCard(c tele.Context) error {
	return h.selectPayment(c, domain.PaymentCard)
}

func (h *Handler) handlePayCrypto(c tele.Context) error {
	return h.selectPayment(c, domain.PaymentCrypto)
}

func (h *Handler) selectPayment(c tele.Context, method domain.PaymentMethod) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	reply, err := h.intakeService.SelectPayment(ctx, c.Sender().ID, method)
	if err != nil {
		return h.editOrSend(c, textGenericError, backMarkup())
	}
	return h.sendReply(c, reply)
}

// handleCardPaid moves the buyer's order to review and tells the admins
func (h *Handler) handleCardPaid(c tele.Context) error {
	orderID, err := parseOrderID(cleanCallbackData(c.Callback().Data))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный заказ"})
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	order, err := h.orderService.SubmitPayment(ctx, userFromSender(c.Sender()), orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) && !errors.Is(err, domain.ErrIllegalTransition) {
			h.logger.Error("Failed to submit payment",
				zap.Int64("order_id", orderID),
				zap.Error(err),
			)
		}
		return c.Respond(&tele.CallbackResponse{
			Text:      renderBuyerError(err, orderID),
			ShowAlert: true,
		})
	}

	return h.editOrSend(c, renderPaymentSubmitted(order), backMarkup())
}

// sendReply renders an intake reply
func (h *Handler) sendReply(c tele.Context, reply service.Reply) error {
	prices := h.pricer.Prices()

	switch reply.Kind {
	case service.ReplyMenu:
		return h.editOrSend(c, textUseMenu, mainMenuMarkup(h.storefront.SupportUser))
	case service.ReplyPrompt:
		return h.editOrSend(c, renderPrompt(reply.Step, reply.Draft, prices), h.stepMarkup(reply.Step))
	case service.ReplyRetry:
		return h.editOrSend(c, renderRetry(reply.Reason, reply.Step, reply.Draft, prices), h.stepMarkup(reply.Step))
	case service.ReplyOrderCreated:
		return h.editOrSend(c,
			renderCardPayment(reply.Order, reply.Draft, prices, h.storefront.CardNumber),
			cardPaidMarkup(reply.Order.ID),
		)
	case service.ReplyAlternateUnavailable:
		return h.editOrSend(c, renderAlternateUnavailable(), paymentMarkup(h.intakeService.AlternateEnabled()))
	}
	return nil
}

// stepMarkup returns the keyboard shown under a prompt
func (h *Handler) stepMarkup(step domain.Step) *tele.ReplyMarkup {
	switch step {
	case domain.StepAwaitPeriod:
		return periodMarkup(h.pricer.Prices())
	case domain.StepAwaitPayment:
		return paymentMarkup(h.intakeService.AlternateEnabled())
	}
	return backMarkup()
}
