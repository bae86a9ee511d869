package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"cafe-pos/models"
	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showCart(ctx context.Context, chatID int64) {
	s := b.session(chatID)
	if s.TableID == 0 {
		b.send(chatID, "Pick a table first (/start).")
		return
	}
	cart, err := services.GetCart(ctx, s.TableID)
	if err != nil {
		log.Printf("get cart table=%d: %v", s.TableID, err)
		b.send(chatID, "Could not load the cart. Please try again.")
		return
	}
	if len(cart.Items) == 0 {
		b.send(chatID, "Cart is empty.")
		return
	}

	var text strings.Builder
	text.WriteString("Cart:\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range cart.Items {
		fmt.Fprintf(&text, "%d x %s  Rs. %s\n", it.Quantity, it.Name, services.FormatMoney(it.LineTotal()))
		if it.Instruction != "" {
			fmt.Fprintf(&text, "   • %s\n", it.Instruction)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ "+it.Name, "dec:"+it.Name),
			tgbotapi.NewInlineKeyboardButtonData("➕", "inc:"+it.Name),
			tgbotapi.NewInlineKeyboardButtonData("📝", "note:"+it.Name),
		))
	}
	fmt.Fprintf(&text, "\nSubtotal: Rs. %s (%d items)", services.FormatMoney(cart.Subtotal()), cart.TotalQuantity())
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", "menu"),
		tgbotapi.NewInlineKeyboardButtonData("✅ Checkout", "checkout"),
	))
	b.sendWithInline(chatID, text.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) onCheckout(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	s := b.session(cq.Message.Chat.ID)
	if s.TableID == 0 {
		b.answerCallback(cq, "Pick a table first (/start).", true)
		return
	}
	cart, err := services.GetCart(ctx, s.TableID)
	if err != nil || len(cart.Items) == 0 {
		b.answerCallback(cq, "Cart is empty.", true)
		return
	}
	b.answerCallback(cq, "", false)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("0%", "disc:0"),
			tgbotapi.NewInlineKeyboardButtonData("5%", "disc:5"),
			tgbotapi.NewInlineKeyboardButtonData("10%", "disc:10"),
			tgbotapi.NewInlineKeyboardButtonData("15%", "disc:15"),
			tgbotapi.NewInlineKeyboardButtonData("20%", "disc:20"),
		),
	)
	b.sendWithInline(cq.Message.Chat.ID, "Discount:", kb)
}

// onDiscountChosen finalizes the order: freeze the bill, submit order and
// table update atomically, push KOT tickets, deliver the receipt. A
// persistence failure leaves the cart untouched so the operator can
// retry.
func (b *Bot) onDiscountChosen(ctx context.Context, cq *tgbotapi.CallbackQuery, arg string) {
	chatID := cq.Message.Chat.ID
	s := b.session(chatID)
	if s.TableID == 0 {
		b.answerCallback(cq, "Pick a table first (/start).", true)
		return
	}
	cart, err := services.GetCart(ctx, s.TableID)
	if err != nil || len(cart.Items) == 0 {
		b.answerCallback(cq, "Cart is empty.", true)
		return
	}

	pctRaw, _ := strconv.Atoi(arg)
	pct := services.NewDiscountPct(pctRaw)
	taxBP := b.cfg.Billing.TaxPercent * 100
	bill := services.NewBill(s.TableID, cart.Items, pct, taxBP, time.Now())

	orderID, err := services.SubmitOrder(ctx, models.CreateOrderInput{
		SessionID:      bill.SessionID,
		TableID:        bill.TableID,
		Items:          bill.Items,
		Subtotal:       bill.Subtotal,
		DiscountPct:    int(bill.DiscountPct),
		DiscountAmount: bill.DiscountAmount,
		TaxAmount:      bill.TaxAmount,
		GrandTotal:     bill.Total,
		CreatedAt:      bill.CreatedAt,
	})
	if err != nil {
		log.Printf("submit order table=%d: %v", s.TableID, err)
		b.answerCallback(cq, "Order could not be saved. Cart kept — please retry.", true)
		return
	}
	b.answerCallback(cq, "", false)

	if err := services.DeleteCart(ctx, s.TableID); err != nil {
		log.Printf("delete cart table=%d: %v", s.TableID, err)
	}

	table, _ := services.GetTable(ctx, s.TableID)
	tableName := ""
	if table != nil {
		tableName = table.Name
	}

	pref, _ := services.GetKOTPreference(ctx)
	tickets := services.Route(bill.Items, pref, b.stations)
	b.pushTickets(ctx, orderID, tickets, tableName, chatID)

	receipt := services.ReceiptText(ctx, b.generator, services.ReceiptInputFromBill(b.cfg.Receipt.VenueName, bill))
	b.send(chatID, receipt)
	_ = services.SaveOutboundMessage(ctx, chatID, receipt, map[string]interface{}{
		"sent_via": "receipt",
		"order_id": strconv.FormatInt(orderID, 10),
	})
	b.send(chatID, fmt.Sprintf("Order #%d placed for %s.", orderID, tableName))
}

// stationChatFor picks the chat that receives a ticket. Unrouted chats
// fall back to the operator so no ticket is ever dropped.
func (b *Bot) stationChatFor(t services.Ticket, operatorChat int64) int64 {
	station := services.StationKitchen
	switch {
	case t.Title == "Bar KOT":
		station = services.StationBar
	case t.Title == "Kitchen KOT" || t.Title == "KOT":
		station = services.StationKitchen
	case len(t.Items) > 0:
		station = b.stations.StationFor(t.Items[0].Category)
	}

	chat := b.cfg.Stations.KitchenChatID
	if station == services.StationBar {
		chat = b.cfg.Stations.BarChatID
	}
	if chat == 0 {
		chat = operatorChat
	}
	return chat
}

func (b *Bot) pushTickets(ctx context.Context, orderID int64, tickets []services.Ticket, tableName string, operatorChat int64) {
	api := b.messageBot
	if api == nil {
		api = b.api
	}
	for _, t := range tickets {
		dup, err := services.SentTicketWithin30s(ctx, orderID, t.Title)
		if err != nil {
			log.Printf("ticket de-dup order=%d: %v", orderID, err)
		}
		if dup {
			continue
		}
		text := services.TicketText(t, tableName)
		chat := b.stationChatFor(t, operatorChat)
		if _, err := api.Send(tgbotapi.NewMessage(chat, text)); err != nil {
			log.Printf("push ticket %q order=%d: %v", t.Title, orderID, err)
			continue
		}
		_ = services.SaveOutboundMessage(ctx, chat, text, map[string]interface{}{
			"sent_via": "kot_push",
			"order_id": strconv.FormatInt(orderID, 10),
			"title":    t.Title,
		})
	}
}

// handleKOTCommand sets the routing preference:
// /kot single | separate | category Cat1, Cat2
func (b *Bot) handleKOTCommand(ctx context.Context, m *tgbotapi.Message) {
	if b.admin != 0 && m.From.ID != b.admin {
		b.send(m.Chat.ID, "Admin only.")
		return
	}
	args := strings.TrimSpace(m.CommandArguments())
	if args == "" {
		pref, _ := services.GetKOTPreference(ctx)
		text := "KOT mode: " + string(pref.Mode)
		if len(pref.Categories) > 0 {
			text += " (" + strings.Join(pref.Categories, ", ") + ")"
		}
		b.send(m.Chat.ID, text)
		return
	}

	mode, rest, _ := strings.Cut(args, " ")
	pref := services.KOTPreference{Mode: services.ParseKOTMode(mode)}
	if pref.Mode == services.KOTCategory {
		for _, c := range strings.Split(rest, ",") {
			if c = strings.TrimSpace(c); c != "" {
				pref.Categories = append(pref.Categories, c)
			}
		}
	}
	if err := services.SaveKOTPreference(ctx, pref); err != nil {
		log.Printf("save kot preference: %v", err)
		b.send(m.Chat.ID, "Could not save the preference.")
		return
	}
	b.send(m.Chat.ID, "KOT mode set to "+string(pref.Mode)+".")
}

// handleStatsCommand replies with the revenue roll-up for a date
// (default today): /stats [YYYY-MM-DD]
func (b *Bot) handleStatsCommand(ctx context.Context, m *tgbotapi.Message) {
	if b.admin != 0 && m.From.ID != b.admin {
		b.send(m.Chat.ID, "Admin only.")
		return
	}
	date := strings.TrimSpace(m.CommandArguments())
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	stats, err := services.GetDailyStats(ctx, date)
	if err != nil {
		log.Printf("daily stats %s: %v", date, err)
		b.send(m.Chat.ID, "Could not load stats.")
		return
	}
	b.send(m.Chat.ID, fmt.Sprintf(
		"%s\nOrders: %d (%d discounted)\nItems: Rs. %s\nDiscount given: Rs. %s\nTax collected: Rs. %s\nGrand total: Rs. %s",
		date, stats.OrdersCount, stats.DiscountedCount,
		services.FormatMoney(stats.ItemsRevenue),
		services.FormatMoney(stats.DiscountGiven),
		services.FormatMoney(stats.TaxCollected),
		services.FormatMoney(stats.GrandRevenue),
	))
}

// handleFreeCommand frees a table manually: /free <tableID>
func (b *Bot) handleFreeCommand(ctx context.Context, m *tgbotapi.Message) {
	if b.admin != 0 && m.From.ID != b.admin {
		b.send(m.Chat.ID, "Admin only.")
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(m.CommandArguments()), 10, 64)
	if err != nil {
		b.send(m.Chat.ID, "Usage: /free <table id>")
		return
	}
	if err := services.SetTableStatus(ctx, id, services.TableStatusFree); err != nil {
		log.Printf("free table %d: %v", id, err)
		b.send(m.Chat.ID, "Could not free the table.")
		return
	}
	b.send(m.Chat.ID, "Table freed.")
}
