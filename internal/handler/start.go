package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.intakeService.Reset(userID)
	return c.Send(renderMainMenu(h.pricer.Prices()), mainMenuMarkup(h.storefront.SupportUser))
}

// handleMainMenu drops the conversation in progress and shows the main menu
func (h *Handler) handleMainMenu(c tele.Context) error {
	h.intakeService.Reset(c.Sender().ID)
	return h.editOrSend(c, renderMainMenu(h.pricer.Prices()), mainMenuMarkup(h.storefront.SupportUser))
}

// handleInfo shows the info section
func (h *Handler) handleInfo(c tele.Context) error {
	return h.editOrSend(c, renderInfo(), infoMarkup(h.storefront))
}
