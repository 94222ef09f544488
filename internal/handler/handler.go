package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"digistore/internal/domain"
	"digistore/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Storefront holds the fixed texts and links shown to buyers
type Storefront struct {
	CardNumber    string
	SupportUser   string
	ReputationURL string
	NewsURL       string
}

// Handler manages all bot interactions
type Handler struct {
	bot            *tele.Bot
	intakeService  *service.IntakeService
	orderService   *service.OrderService
	adminService   *service.AdminService
	pricer         *service.Pricer
	storefront     Storefront
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	intakeService *service.IntakeService,
	orderService *service.OrderService,
	adminService *service.AdminService,
	pricer *service.Pricer,
	storefront Storefront,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		intakeService:  intakeService,
		orderService:   orderService,
		adminService:   adminService,
		pricer:         pricer,
		storefront:     storefront,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/admin", h.handleAdmin)

	// Text messages, including /verb_<id> admin commands
	h.bot.Handle(tele.OnText, h.handleText)

	// Buyer buttons
	h.bot.Handle(&btnBuyStars, h.handleBuyStars)
	h.bot.Handle(&btnBuyPremium, h.handleBuyPremium)
	h.bot.Handle(&btnExchange, h.handleExchange)
	h.bot.Handle(&btnInfo, h.handleInfo)
	h.bot.Handle(&btnMainMenu, h.handleMainMenu)
	h.bot.Handle(&btnPremiumPeriod, h.handlePremiumPeriod)
	h.bot.Handle(&btnPayCard, h.handlePayCard)
	h.bot.Handle(&btnPayCrypto, h.handlePayCrypto)
	h.bot.Handle(&btnCardPaid, h.handleCardPaid)

	// Admin buttons
	h.bot.Handle(&btnAdminStats, h.handleAdminStats)
	h.bot.Handle(&btnAdminPending, h.handleAdminPending)
	h.bot.Handle(&btnAdminPaid, h.handleAdminPaid)
	h.bot.Handle(&btnAdminBack, h.handleAdminBack)
	h.bot.Handle(&btnAdminConfirm, h.handleAdminConfirm)
	h.bot.Handle(&btnAdminComplete, h.handleAdminComplete)
	h.bot.Handle(&btnAdminCancel, h.handleAdminCancel)

	// Generic callback handler for anything not routed above
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// requestContext bounds the storage work done for one update
func (h *Handler) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.requestTimeout)
}

// userFromSender converts a Telegram sender into a domain user
func userFromSender(sender *tele.User) domain.User {
	return domain.User{
		ID:          sender.ID,
		Username:    sender.Username,
		DisplayName: strings.TrimSpace(sender.FirstName + " " + sender.LastName),
	}
}

// Inline keyboard buttons
var (
	btnBuyStars = tele.Btn{
		Unique: "buy_stars",
		Text:   "⭐️ Купить звезды",
	}
	btnBuyPremium = tele.Btn{
		Unique: "buy_premium",
		Text:   "👑 Купить премиум",
	}
	btnExchange = tele.Btn{
		Unique: "exchange",
		Text:   "💱 Обмен валют",
	}
	btnInfo = tele.Btn{
		Unique: "info",
		Text:   "📊 Информация",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🔙 Главное меню",
	}
	btnPremiumPeriod = tele.Btn{Unique: "premium_period"}
	btnPayCard       = tele.Btn{
		Unique: "pay_card",
		Text:   "💳 Перевод на карту",
	}
	btnPayCrypto = tele.Btn{
		Unique: "pay_crypto",
		Text:   "💎 CryptoBot",
	}
	btnCardPaid = tele.Btn{Unique: "card_paid"}

	btnAdminStats = tele.Btn{
		Unique: "admin_stats",
		Text:   "📊 Статистика",
	}
	btnAdminPending = tele.Btn{
		Unique: "admin_pending",
		Text:   "⏳ Ожидают проверки",
	}
	btnAdminPaid = tele.Btn{
		Unique: "admin_paid",
		Text:   "💰 Оплаченные",
	}
	btnAdminBack = tele.Btn{
		Unique: "admin_back",
		Text:   "🔙 Назад",
	}
	btnAdminConfirm  = tele.Btn{Unique: "admin_confirm"}
	btnAdminComplete = tele.Btn{Unique: "admin_complete"}
	btnAdminCancel   = tele.Btn{Unique: "admin_cancel"}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup(supportUser string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := []tele.Row{
		menu.Row(btnBuyStars),
		menu.Row(btnBuyPremium),
		menu.Row(btnExchange),
		menu.Row(btnInfo),
	}
	if supportUser != "" {
		rows = append(rows, menu.Row(menu.URL("🆘 Тех поддержка", "https://t.me/"+strings.TrimPrefix(supportUser, "@"))))
	}
	menu.Inline(rows...)
	return menu
}

// backMarkup returns a keyboard with a single main menu button
func backMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return markup
}

// infoMarkup returns the info section keyboard with the configured links
func infoMarkup(sf Storefront) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	if sf.ReputationURL != "" {
		rows = append(rows, markup.Row(markup.URL("📈 Репутация", sf.ReputationURL)))
	}
	if sf.NewsURL != "" {
		rows = append(rows, markup.Row(markup.URL("📰 Новости", sf.NewsURL)))
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// periodMarkup returns one button per premium period in display order
func periodMarkup(prices domain.PriceList) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(prices.PremiumOrder)+1)
	for _, period := range prices.PremiumOrder {
		rows = append(rows, markup.Row(markup.Data(prices.Premium[period].Name, btnPremiumPeriod.Unique, period)))
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// paymentMarkup returns the payment method keyboard
func paymentMarkup(alternateEnabled bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{markup.Row(btnPayCard)}
	if alternateEnabled {
		rows = append(rows, markup.Row(btnPayCrypto))
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// cardPaidMarkup returns the "I have paid" keyboard for an order
func cardPaidMarkup(orderID int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("✅ Я перевел", btnCardPaid.Unique, strconv.FormatInt(orderID, 10))),
		markup.Row(btnMainMenu),
	)
	return markup
}

// adminMenuMarkup returns the admin panel keyboard
func adminMenuMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnAdminStats),
		markup.Row(btnAdminPending),
		markup.Row(btnAdminPaid),
		markup.Row(btnMainMenu),
	)
	return markup
}

// adminListMarkup returns the refresh/back keyboard under an admin listing
func adminListMarkup(refresh tele.Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔄 Обновить", refresh.Unique)),
		markup.Row(btnAdminBack),
	)
	return markup
}

// orderActionsMarkup returns buttons only for the actions valid in the order's status
func orderActionsMarkup(orderID int64, actions []domain.Action) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	payload := strconv.FormatInt(orderID, 10)

	rows := make([]tele.Row, 0, len(actions)+1)
	for _, action := range actions {
		switch action {
		case domain.ActionConfirm:
			rows = append(rows, markup.Row(markup.Data("✅ Подтвердить оплату", btnAdminConfirm.Unique, payload)))
		case domain.ActionComplete:
			rows = append(rows, markup.Row(markup.Data("✅ Заказ выполнен", btnAdminComplete.Unique, payload)))
		case domain.ActionCancel:
			rows = append(rows, markup.Row(markup.Data("❌ Отменить", btnAdminCancel.Unique, payload)))
		}
	}
	rows = append(rows, markup.Row(btnAdminBack))
	markup.Inline(rows...)
	return markup
}
