package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"digistore/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const verbCheck = "check"

var errCommandFormat = errors.New("malformed admin command")

// adminCommand is a parsed /verb_<id> command
type adminCommand struct {
	Verb    string
	OrderID int64
}

// parseAdminCommand parses "/verb_<id>" and "/verb_<id>@botname".
// ok is false when text is not an admin command at all.
func parseAdminCommand(text string) (cmd adminCommand, ok bool, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return adminCommand{}, false, nil
	}

	head := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}

	verb, arg, _ := strings.Cut(head, "_")
	switch verb {
	case verbCheck, string(domain.ActionConfirm), string(domain.ActionComplete), string(domain.ActionCancel):
	default:
		return adminCommand{}, false, nil
	}

	cmd.Verb = verb
	id, err := parseOrderID(arg)
	if err != nil {
		return cmd, true, err
	}
	cmd.OrderID = id
	return cmd, true, nil
}

// parseOrderID parses a positive order id
func parseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errCommandFormat, s)
	}
	return id, nil
}

func formatHint(verb string) string {
	return fmt.Sprintf("❌ Формат: /%s_123", verb)
}

// handleAdminCommand runs /check, /confirm, /complete and /cancel
func (h *Handler) handleAdminCommand(c tele.Context, cmd adminCommand) error {
	callerID := c.Sender().ID

	ctx, cancel := h.requestContext()
	defer cancel()

	if cmd.Verb == verbCheck {
		order, actions, err := h.adminService.Inspect(ctx, callerID, cmd.OrderID)
		if err != nil {
			return c.Send(renderAdminError(err, cmd.OrderID))
		}
		return c.Send(renderOrderCard(order, actions), orderActionsMarkup(order.ID, actions))
	}

	order, err := h.adminService.Apply(ctx, callerID, cmd.OrderID, domain.Action(cmd.Verb))
	if err != nil {
		return c.Send(renderAdminError(err, cmd.OrderID))
	}
	return c.Send(renderActionApplied(order))
}

// handleAdmin handles /admin command
func (h *Handler) handleAdmin(c tele.Context) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	stats, err := h.adminService.Stats(ctx, c.Sender().ID)
	if err != nil {
		return c.Send(renderAdminError(err, 0))
	}
	return c.Send(renderAdminPanel(stats), adminMenuMarkup())
}

func (h *Handler) handleAdminBack(c tele.Context) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	stats, err := h.adminService.Stats(ctx, c.Sender().ID)
	if err != nil {
		return h.respondAdminError(c, err, 0)
	}
	return h.editOrSend(c, renderAdminPanel(stats), adminMenuMarkup())
}

func (h *Handler) handleAdminStats(c tele.Context) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	stats, err := h.adminService.Stats(ctx, c.Sender().ID)
	if err != nil {
		return h.respondAdminError(c, err, 0)
	}
	return h.editOrSend(c, renderStats(stats), adminListMarkup(btnAdminStats))
}

func (h *Handler) handleAdminPending(c tele.Context) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	orders, err := h.adminService.PendingReview(ctx, c.Sender().ID)
	if err != nil {
		return h.respondAdminError(c, err, 0)
	}
	text := renderOrderList("⏳ Ожидают проверки:", "✅ Нет заказов, ожидающих проверки", verbCheck, orders)
	return h.editOrSend(c, text, adminListMarkup(btnAdminPending))
}

func (h *Handler) handleAdminPaid(c tele.Context) error {
	ctx, cancel := h.requestContext()
	defer cancel()

	orders, err := h.adminService.AwaitingFulfillment(ctx, c.Sender().ID)
	if err != nil {
		return h.respondAdminError(c, err, 0)
	}
	text := renderOrderList("💳 Оплаченные заказы:", "✅ Нет оплаченных заказов", string(domain.ActionComplete), orders)
	return h.editOrSend(c, text, adminListMarkup(btnAdminPaid))
}

func (h *Handler) handleAdminConfirm(c tele.Context) error {
	return h.handleAdminAction(c, domain.ActionConfirm)
}

func (h *Handler) handleAdminComplete(c tele.Context) error {
	return h.handleAdminAction(c, domain.ActionComplete)
}

func (h *Handler) handleAdminCancel(c tele.Context) error {
	return h.handleAdminAction(c, domain.ActionCancel)
}

// handleAdminAction applies an action from the order card buttons and redraws the card
func (h *Handler) handleAdminAction(c tele.Context, action domain.Action) error {
	orderID, err := parseOrderID(cleanCallbackData(c.Callback().Data))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный заказ"})
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	order, err := h.adminService.Apply(ctx, c.Sender().ID, orderID, action)
	if err != nil {
		return h.respondAdminError(c, err, orderID)
	}

	if err := c.Respond(&tele.CallbackResponse{Text: renderActionApplied(order)}); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	actions := order.Status.NextActions()
	text := renderOrderCard(order, actions)
	markup := orderActionsMarkup(order.ID, actions)
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return nil
}

func (h *Handler) respondAdminError(c tele.Context, err error, orderID int64) error {
	return c.Respond(&tele.CallbackResponse{
		Text:      renderAdminError(err, orderID),
		ShowAlert: true,
	})
}
