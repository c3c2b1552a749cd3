package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderNotifier tells café staff about newly placed pickup orders.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order OrderNotification) error
}

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	staffChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, staffChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		staffChatID: staffChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the service at another Bot API host.
func (s *TelegramService) WithBaseURL(url string) *TelegramService {
	s.baseURL = strings.TrimRight(url, "/")
	return s
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" || chatID == "" {
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// OrderNotification contains order data for the staff chat.
type OrderNotification struct {
	OrderNumber   string
	CustomerName  string
	PickupTime    time.Time
	PaymentMethod string
	Total         decimal.Decimal
	Items         []OrderItemNotification
}

type OrderItemNotification struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// NotifyNewOrder posts a pickup order summary to the staff chat.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order OrderNotification) error {
	if s.staffChatID == "" {
		return nil
	}
	return s.SendMessage(ctx, s.staffChatID, FormatOrderMessage(order))
}

// FormatOrderMessage renders the HTML message sent for a new order.
func FormatOrderMessage(order OrderNotification) string {
	var items strings.Builder
	for i, item := range order.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&items, "%d. <b>%s</b>\n   %d x $%s = $%s\n",
			i+1,
			html.EscapeString(item.Name),
			item.Quantity,
			item.Price.StringFixed(2),
			lineTotal.StringFixed(2),
		)
	}

	payment := "Cash at pickup"
	if order.PaymentMethod == "card" {
		payment = "Card (prepaid)"
	}

	message := fmt.Sprintf(`<b>☕ NEW PICKUP ORDER</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Pickup:</b> %s
<b>Items:</b>
%s
<b>Total:</b> $%s
<b>Payment:</b> %s`,
		html.EscapeString(order.OrderNumber),
		html.EscapeString(order.CustomerName),
		order.PickupTime.Format("Mon 02 Jan 15:04"),
		items.String(),
		order.Total.StringFixed(2),
		payment,
	)

	return strings.TrimSpace(message)
}
