package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mangabrew/internal/services"
)

func sampleNotification() services.OrderNotification {
	return services.OrderNotification{
		OrderNumber:   "MB-260314-ABC123",
		CustomerName:  "Aiko <Tanaka>",
		PickupTime:    testNow,
		PaymentMethod: "card",
		Total:         decimal.RequireFromString("12.25"),
		Items: []services.OrderItemNotification{
			{Name: "Matcha Latte", Quantity: 2, Price: decimal.RequireFromString("4.50")},
			{Name: "Onigiri", Quantity: 1, Price: decimal.RequireFromString("3.25")},
		},
	}
}

func TestFormatOrderMessage(t *testing.T) {
	msg := services.FormatOrderMessage(sampleNotification())

	assert.Contains(t, msg, "MB-260314-ABC123")
	assert.Contains(t, msg, "Aiko &lt;Tanaka&gt;")
	assert.Contains(t, msg, "2 x $4.50 = $9.00")
	assert.Contains(t, msg, "<b>Total:</b> $12.25")
	assert.Contains(t, msg, "Card (prepaid)")
}

func TestNotifyNewOrderPostsToStaffChat(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botbot-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := services.NewTelegramService("bot-token", "-100200").WithBaseURL(srv.URL)
	require.NoError(t, svc.NotifyNewOrder(context.Background(), sampleNotification()))
	assert.Equal(t, "-100200", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Contains(t, got["text"], "NEW PICKUP ORDER")
}

func TestNotifyNewOrderReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := services.NewTelegramService("bot-token", "-100200").WithBaseURL(srv.URL)
	assert.Error(t, svc.NotifyNewOrder(context.Background(), sampleNotification()))
}

func TestNotifyNewOrderDisabledWithoutChat(t *testing.T) {
	svc := services.NewTelegramService("", "")
	assert.NoError(t, svc.NotifyNewOrder(context.Background(), sampleNotification()))
}
