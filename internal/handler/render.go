package handler

import (
	"errors"
	"fmt"
	"strings"

	"digistore/internal/domain"
	"digistore/internal/service"
)

const (
	textGenericError = "Произошла ошибка. Попробуйте позже."
	textUseMenu      = "Используйте меню"
	textAccessDenied = "❌ Доступ запрещен"
)

var statusNames = map[domain.Status]string{
	domain.StatusPending:   "⏳ Ожидает оплаты",
	domain.StatusWaiting:   "🔎 Ожидает проверки",
	domain.StatusPaid:      "💳 Оплачено",
	domain.StatusCompleted: "✅ Выполнено",
	domain.StatusCancelled: "❌ Отменено",
}

var kindNames = map[domain.Kind]string{
	domain.KindStars:    "⭐️ Звезды",
	domain.KindPremium:  "👑 Премиум",
	domain.KindExchange: "💱 Обмен валют",
}

func renderMainMenu(prices domain.PriceList) string {
	return fmt.Sprintf("🪐 Digi Store - Главное меню\n\n"+
		"C помощью нашего магазина вы можете:\n"+
		"• ⭐️ Купить Telegram Stars\n"+
		"• 👑 Купить Telegram Premium\n"+
		"• 💱 Обменять рубли на доллары\n\n"+
		"📊 Текущие курсы:\n"+
		"• 1 звезда = %s RUB\n"+
		"• 1 USD = %s RUB\n\n"+
		"Выберите действие:",
		formatRate(prices.StarRate), formatRate(prices.USDRate))
}

func renderInfo() string {
	return "📊 Информация\n\nВыберите раздел:"
}

// renderPrompt asks for the input the conversation is waiting for
func renderPrompt(step domain.Step, draft domain.Draft, prices domain.PriceList) string {
	switch step {
	case domain.StepAwaitRecipient:
		header := "⭐️ Покупка Telegram Stars\n\n" +
			fmt.Sprintf("Курс: 1 звезда = %s RUB\n", formatRate(prices.StarRate)) +
			fmt.Sprintf("Диапазон: от %d до %d звезд\n\n", service.MinStars, service.MaxStars)
		if draft.Kind == domain.KindPremium {
			header = "👑 Покупка Telegram Premium\n\n"
		}
		return header + "✏️ Введите username получателя\n\n" +
			"Формат: @username или просто username"

	case domain.StepAwaitQuantity:
		return fmt.Sprintf("✅ Получатель: %s\n\n"+
			"Введите количество звезд (от %d до %d):",
			draft.Recipient, service.MinStars, service.MaxStars)

	case domain.StepAwaitPeriod:
		var b strings.Builder
		fmt.Fprintf(&b, "✅ Получатель: %s\n\n👑 Выберите период подписки:\n\n", draft.Recipient)
		for _, period := range prices.PremiumOrder {
			price := prices.Premium[period]
			fmt.Fprintf(&b, "• %s: %.2f RUB\n", price.Name, price.RUB)
		}
		return b.String()

	case domain.StepAwaitAmount:
		return fmt.Sprintf("💱 Обмен валют\n\n"+
			"Курс: 1 USD = %s RUB\n\n"+
			"Введите сумму в рублях:\n"+
			"(Минимум: %.0f RUB)",
			formatRate(prices.USDRate), service.MinExchangeRUB)

	case domain.StepAwaitPayment:
		return renderSummary(draft, prices) + "\nВыберите способ оплаты:"
	}
	return textUseMenu
}

// renderSummary describes a priced draft
func renderSummary(draft domain.Draft, prices domain.PriceList) string {
	switch draft.Kind {
	case domain.KindStars:
		return fmt.Sprintf("⭐️ Покупка звезд\n\n"+
			"Получатель: %s\n"+
			"Количество: %d ⭐️\n"+
			"Сумма: %.2f RUB\n",
			draft.Recipient, draft.Quantity, draft.Quote.RUB)
	case domain.KindPremium:
		return fmt.Sprintf("👑 Telegram Premium\n\n"+
			"Период: %s\n"+
			"Получатель: %s\n"+
			"Сумма: %.2f RUB\n",
			periodName(draft.Period, prices), draft.Recipient, draft.Quote.RUB)
	case domain.KindExchange:
		return fmt.Sprintf("💱 Обмен валют\n\n"+
			"Отдаете: %.2f RUB\n"+
			"Получаете: %.2f USD\n"+
			"Курс: 1 USD = %s RUB\n",
			draft.Quote.RUB, draft.Quote.USD, formatRate(prices.USDRate))
	}
	return ""
}

// renderCardPayment shows the bank transfer instructions for a new order
func renderCardPayment(order *domain.Order, draft domain.Draft, prices domain.PriceList, cardNumber string) string {
	return renderSummary(draft, prices) + "\n" +
		"💳 Перевод на карту:\n" +
		cardNumber + "\n\n" +
		"Инструкция:\n" +
		"1. Переведите точную сумму\n" +
		"2. Сделайте скриншот перевода\n" +
		"3. Нажмите ✅ Я перевел\n" +
		"4. Админ проверит оплату\n\n" +
		fmt.Sprintf("🆔 Заказ: #%d", order.ID)
}

func renderRetry(reason string, step domain.Step, draft domain.Draft, prices domain.PriceList) string {
	return fmt.Sprintf("❌ %s\n\n%s", capitalize(reason), renderPrompt(step, draft, prices))
}

func renderAlternateUnavailable() string {
	return "💎 Оплата через CryptoBot временно недоступна.\n\nВыберите перевод на карту."
}

func renderPaymentSubmitted(order *domain.Order) string {
	return fmt.Sprintf("✅ Спасибо! Заказ #%d отправлен на проверку.\n\n"+
		"Мы сообщим, как только админ подтвердит оплату.", order.ID)
}

// renderBuyerError explains a failed "I have paid" press
func renderBuyerError(err error, orderID int64) string {
	var transitionErr *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return fmt.Sprintf("❌ Заказ #%d не найден", orderID)
	case errors.As(err, &transitionErr):
		return fmt.Sprintf("ℹ️ Заказ #%d уже %s", orderID, strings.ToLower(statusLabel(transitionErr.From)))
	}
	return textGenericError
}

// renderAdminError turns an admin workflow failure into a short explanation
func renderAdminError(err error, orderID int64) string {
	var transitionErr *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return textAccessDenied
	case errors.Is(err, domain.ErrOrderNotFound):
		return fmt.Sprintf("❌ Заказ #%d не найден", orderID)
	case errors.As(err, &transitionErr):
		return fmt.Sprintf("⚠️ Заказ #%d в статусе «%s», действие невозможно",
			orderID, statusLabel(transitionErr.From))
	}
	return textGenericError
}

func renderActionApplied(order *domain.Order) string {
	switch order.Status {
	case domain.StatusPaid:
		return fmt.Sprintf("✅ Заказ #%d подтвержден", order.ID)
	case domain.StatusCompleted:
		return fmt.Sprintf("✅ Заказ #%d выполнен", order.ID)
	case domain.StatusCancelled:
		return fmt.Sprintf("✅ Заказ #%d отменен", order.ID)
	}
	return fmt.Sprintf("Заказ #%d: %s", order.ID, statusLabel(order.Status))
}

// renderOrderCard is the full order view shown by /check_<id>
func renderOrderCard(order *domain.Order, actions []domain.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Заказ #%d\n\n", order.ID)
	fmt.Fprintf(&b, "👤 User ID: %d\n", order.OwnerID)
	fmt.Fprintf(&b, "📦 Тип: %s\n", kindLabel(order.Kind))
	if order.Recipient != "" {
		fmt.Fprintf(&b, "👤 Получатель: %s\n", order.Recipient)
	}
	fmt.Fprintf(&b, "📋 Детали: %s\n", detailsLabel(order.Details))
	fmt.Fprintf(&b, "💰 Сумма: %.2f RUB (%.2f USD)\n", order.AmountRUB, order.AmountUSD)
	fmt.Fprintf(&b, "💳 Метод: %s\n", order.PaymentMethod)
	fmt.Fprintf(&b, "📊 Статус: %s\n", statusLabel(order.Status))
	fmt.Fprintf(&b, "📅 Создан: %s\n", order.CreatedAt.Format("02.01.2006 15:04"))
	if order.PaidAt != nil {
		fmt.Fprintf(&b, "💳 Оплачен: %s\n", order.PaidAt.Format("02.01.2006 15:04"))
	}
	if order.CompletedAt != nil {
		fmt.Fprintf(&b, "✅ Выполнен: %s\n", order.CompletedAt.Format("02.01.2006 15:04"))
	}

	if len(actions) == 0 {
		b.WriteString("\nДействий нет: заказ закрыт")
		return b.String()
	}
	b.WriteString("\n")
	for _, action := range actions {
		fmt.Fprintf(&b, "/%s_%d\n", action, order.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAdminPanel(stats *domain.Stats) string {
	return fmt.Sprintf("🛠️ Админ панель\n\n"+
		"📊 Статистика:\n"+
		"👥 Пользователей: %d\n"+
		"✅ Выполнено: %d\n"+
		"💰 Выручка: %.2f RUB\n\n"+
		"⏳ Ожидают: %d\n"+
		"💳 Оплачено: %d\n\n"+
		"Выберите раздел:",
		stats.TotalUsers, stats.CompletedOrders, stats.CompletedRevenueRUB,
		stats.PendingOrders, stats.PaidOrders)
}

func renderStats(stats *domain.Stats) string {
	return fmt.Sprintf("📊 Статистика\n\n"+
		"👥 Пользователи: %d\n"+
		"✅ Выполнено заказов: %d\n"+
		"💰 Общая выручка: %.2f RUB\n\n"+
		"⏳ Ожидают проверки: %d\n"+
		"💳 Оплачено: %d",
		stats.TotalUsers, stats.CompletedOrders, stats.CompletedRevenueRUB,
		stats.PendingOrders, stats.PaidOrders)
}

// renderOrderList renders a dashboard listing; hint is the command suggested per entry
func renderOrderList(title, empty, hint string, orders []domain.Order) string {
	if len(orders) == 0 {
		return empty
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, order := range orders {
		fmt.Fprintf(&b, "#%d %s\n", order.ID, kindLabel(order.Kind))
		fmt.Fprintf(&b, "👤 User ID: %d\n", order.OwnerID)
		if order.Recipient != "" {
			fmt.Fprintf(&b, "👤 Получатель: %s\n", order.Recipient)
		}
		fmt.Fprintf(&b, "💰 %.2f RUB\n", order.AmountRUB)
		fmt.Fprintf(&b, "📊 %s\n", statusLabel(order.Status))
		fmt.Fprintf(&b, "📅 %s\n", order.CreatedAt.Format("02.01.2006 15:04"))
		fmt.Fprintf(&b, "🔗 /%s_%d\n", hint, order.ID)
		b.WriteString(strings.Repeat("─", 20) + "\n")
	}
	return b.String()
}

func statusLabel(status domain.Status) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return string(status)
}

func kindLabel(kind domain.Kind) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return string(kind)
}

func detailsLabel(details domain.Details) string {
	switch d := details.(type) {
	case domain.StarsDetails:
		return fmt.Sprintf("%d звезд", d.Quantity)
	case domain.PremiumDetails:
		return d.Period
	case domain.ExchangeDetails:
		return fmt.Sprintf("%.2f RUB", d.SourceAmount)
	}
	return "—"
}

func periodName(period string, prices domain.PriceList) string {
	if price, ok := prices.Premium[period]; ok {
		return price.Name
	}
	return period
}

// formatRate prints a rate without trailing zeros: 1.5, 84
func formatRate(rate float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", rate), "0"), ".")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
