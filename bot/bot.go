package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"cafe-pos/config"
	"cafe-pos/models"
	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// session is the per-operator ordering state: which table is open and
// whether we are waiting for a free-text preparation note.
type session struct {
	TableID     int64
	PendingNote string // item name awaiting an instruction, "" when none
}

type Bot struct {
	api        *tgbotapi.BotAPI
	messageBot *tgbotapi.BotAPI // bot for pushing KOT tickets to station chats (MESSAGE_TOKEN)
	cfg        *config.Config
	admin      int64
	generator  services.ReceiptGenerator
	stations   services.StationMap

	sessions   map[int64]*session
	sessionsMu sync.Mutex
}

func New(cfg *config.Config, adminUserID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		api:      api,
		cfg:      cfg,
		admin:    adminUserID,
		stations: services.DefaultStationMap(),
		sessions: make(map[int64]*session),
	}
	// Initialize message bot if MESSAGE_TOKEN is set
	if cfg.Telegram.MessageToken != "" {
		messageBot, err := tgbotapi.NewBotAPI(cfg.Telegram.MessageToken)
		if err != nil {
			log.Printf("warning: failed to initialize message bot: %v", err)
		} else {
			bot.messageBot = messageBot
		}
	}
	if cfg.Receipt.APIURL != "" {
		bot.generator = services.NewHTTPGenerator(
			cfg.Receipt.APIURL,
			time.Duration(cfg.Receipt.TimeoutMs)*time.Millisecond,
		)
	}
	return bot, nil
}

func (b *Bot) session(chatID int64) *session {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send: %v", err)
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send: %v", err)
	}
}

// answerCallback answers the callback query (required for every callback
// path). If showAlert, Telegram shows a popup.
func (b *Bot) answerCallback(cq *tgbotapi.CallbackQuery, text string, showAlert bool) {
	cb := tgbotapi.NewCallback(cq.ID, text)
	cb.ShowAlert = showAlert
	if _, err := b.api.Request(cb); err != nil {
		log.Printf("answerCallback: %v", err)
	}
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		case update.Message != nil:
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	ctx := context.Background()
	chatID := m.Chat.ID
	s := b.session(chatID)

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			s.PendingNote = ""
			b.showTables(ctx, chatID)
		case "cart":
			b.showCart(ctx, chatID)
		case "kot":
			b.handleKOTCommand(ctx, m)
		case "stats":
			b.handleStatsCommand(ctx, m)
		case "free":
			b.handleFreeCommand(ctx, m)
		default:
			b.send(chatID, "Unknown command. Use /start to open a table.")
		}
		return
	}

	// A plain text message while a note is pending becomes the line's
	// preparation instruction.
	if s.PendingNote != "" && s.TableID != 0 {
		name := s.PendingNote
		s.PendingNote = ""
		cart, err := services.GetCart(ctx, s.TableID)
		if err != nil {
			b.send(chatID, "Could not load the cart. Please try again.")
			return
		}
		cart.SetInstruction(name, strings.TrimSpace(m.Text))
		if err := services.SaveCart(ctx, s.TableID, cart); err != nil {
			b.send(chatID, "Could not save the note. Please try again.")
			return
		}
		b.send(chatID, fmt.Sprintf("Note saved for %s.", name))
		return
	}

	b.send(chatID, "Use /start to open a table.")
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := cq.Data
	action, arg := data, ""
	if i := strings.Index(data, ":"); i >= 0 {
		action, arg = data[:i], data[i+1:]
	}

	switch action {
	case "table":
		b.onTableChosen(ctx, cq, arg)
	case "cat":
		b.onCategoryChosen(ctx, cq, arg)
	case "add":
		b.onAddItem(ctx, cq, arg)
	case "inc":
		b.onQuantityDelta(ctx, cq, arg, 1)
	case "dec":
		b.onQuantityDelta(ctx, cq, arg, -1)
	case "note":
		b.onNoteRequested(cq, arg)
	case "cart":
		b.answerCallback(cq, "", false)
		b.showCart(ctx, cq.Message.Chat.ID)
	case "menu":
		b.answerCallback(cq, "", false)
		b.showCategories(ctx, cq.Message.Chat.ID)
	case "checkout":
		b.onCheckout(ctx, cq)
	case "disc":
		b.onDiscountChosen(ctx, cq, arg)
	default:
		b.answerCallback(cq, "", false)
	}
}

func (b *Bot) showTables(ctx context.Context, chatID int64) {
	tables, err := services.ListTables(ctx)
	if err != nil {
		log.Printf("list tables: %v", err)
		b.send(chatID, "Could not load tables. Please try again.")
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tables {
		label := t.Name
		if t.Status == services.TableStatusOccupied {
			label += " (occupied)"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "table:"+strconv.FormatInt(t.ID, 10)),
		))
	}
	b.sendWithInline(chatID, "Pick a table:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) onTableChosen(ctx context.Context, cq *tgbotapi.CallbackQuery, arg string) {
	tableID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.answerCallback(cq, "", false)
		return
	}
	s := b.session(cq.Message.Chat.ID)
	s.TableID = tableID
	s.PendingNote = ""
	b.answerCallback(cq, "", false)
	b.showCategories(ctx, cq.Message.Chat.ID)
}

func availabilityBadge(a models.Availability) string {
	switch a {
	case models.Low:
		return " (low stock)"
	case models.Unavailable:
		return " (not available)"
	default:
		return ""
	}
}

func (b *Bot) showCategories(ctx context.Context, chatID int64) {
	cats, err := services.ListMenu(ctx)
	if err != nil {
		log.Printf("list menu: %v", err)
		b.send(chatID, "Could not load the menu. Please try again.")
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range cats {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name+availabilityBadge(c.Status), "cat:"+c.Name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
		tgbotapi.NewInlineKeyboardButtonData("✅ Checkout", "checkout"),
	))
	b.sendWithInline(chatID, "Menu:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) onCategoryChosen(ctx context.Context, cq *tgbotapi.CallbackQuery, category string) {
	cat, err := services.GetCategory(ctx, category)
	if err != nil {
		b.answerCallback(cq, "Unknown category.", true)
		return
	}
	items, err := services.ListMenuByCategory(ctx, category)
	if err != nil {
		log.Printf("list category %s: %v", category, err)
		b.answerCallback(cq, "Could not load items.", true)
		return
	}
	b.answerCallback(cq, "", false)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		badge := availabilityBadge(services.BadgeAvailability(it.Status, cat.Status))
		veg := ""
		if it.Veg != nil && *it.Veg {
			veg = "🟢 "
		}
		label := fmt.Sprintf("%s%s · Rs. %s%s", veg, it.Name, services.FormatMoney(it.Price), badge)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "add:"+strconv.FormatInt(it.ID, 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", "menu"),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
	))
	b.sendWithInline(cq.Message.Chat.ID, category+":", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) onAddItem(ctx context.Context, cq *tgbotapi.CallbackQuery, arg string) {
	s := b.session(cq.Message.Chat.ID)
	if s.TableID == 0 {
		b.answerCallback(cq, "Pick a table first (/start).", true)
		return
	}
	itemID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.answerCallback(cq, "", false)
		return
	}
	item, err := services.GetMenuItem(ctx, itemID)
	if err != nil {
		b.answerCallback(cq, "Item not found.", true)
		return
	}
	cat, err := services.GetCategory(ctx, item.Category)
	if err != nil {
		b.answerCallback(cq, "Item not found.", true)
		return
	}

	cart, err := services.GetCart(ctx, s.TableID)
	if err != nil {
		b.answerCallback(cq, "Could not load the cart.", true)
		return
	}
	if err := services.AddToCart(cart, *item, cat.Status, 1); err != nil {
		b.answerCallback(cq, item.Name+" is not available right now.", true)
		return
	}
	if err := services.SaveCart(ctx, s.TableID, cart); err != nil {
		log.Printf("save cart table=%d: %v", s.TableID, err)
		b.answerCallback(cq, "Could not save the cart.", true)
		return
	}
	b.answerCallback(cq, fmt.Sprintf("%s ×%d", item.Name, cart.Quantity(item.Name)), false)
}

func (b *Bot) onQuantityDelta(ctx context.Context, cq *tgbotapi.CallbackQuery, name string, delta int) {
	s := b.session(cq.Message.Chat.ID)
	if s.TableID == 0 {
		b.answerCallback(cq, "Pick a table first (/start).", true)
		return
	}
	cart, err := services.GetCart(ctx, s.TableID)
	if err != nil {
		b.answerCallback(cq, "Could not load the cart.", true)
		return
	}
	if cart.Quantity(name) == 0 {
		b.answerCallback(cq, "That line is gone.", false)
		return
	}
	cart.Add(models.OrderItem{Name: name}, delta)
	if err := services.SaveCart(ctx, s.TableID, cart); err != nil {
		log.Printf("save cart table=%d: %v", s.TableID, err)
		b.answerCallback(cq, "Could not save the cart.", true)
		return
	}
	b.answerCallback(cq, "", false)
	b.showCart(ctx, cq.Message.Chat.ID)
}

func (b *Bot) onNoteRequested(cq *tgbotapi.CallbackQuery, name string) {
	s := b.session(cq.Message.Chat.ID)
	s.PendingNote = name
	b.answerCallback(cq, "", false)
	b.send(cq.Message.Chat.ID, fmt.Sprintf("Send the preparation note for %s:", name))
}
