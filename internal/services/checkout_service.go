package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/mangabrew/internal/cart"
	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/utils"
	"github.com/example/mangabrew/internal/validation"
)

const (
	minPickupLead = 30 * time.Minute
	maxPickupLead = 24 * time.Hour
)

var pickupLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CardDetails holds raw card input. Number and CVV are wiped once the
// format check is done; only the last four digits and expiry are kept.
type CardDetails struct {
	Number []byte
	Expiry string
	CVV    []byte
}

func (c *CardDetails) Wipe() {
	utils.Wipe(c.Number)
	utils.Wipe(c.CVV)
}

type CheckoutInput struct {
	UserID        uuid.UUID
	CustomerName  string
	PickupTime    string
	PaymentMethod string
	Card          CardDetails
}

// CheckoutService turns a cart into a persisted pickup order.
type CheckoutService struct {
	txm      repository.TransactionManager
	menu     repository.MenuRepository
	orders   repository.OrderRepository
	notifier OrderNotifier
	Location *time.Location
	Now      func() time.Time
}

func NewCheckoutService(txm repository.TransactionManager, menu repository.MenuRepository, orders repository.OrderRepository, notifier OrderNotifier) *CheckoutService {
	return &CheckoutService{
		txm:      txm,
		menu:     menu,
		orders:   orders,
		notifier: notifier,
		Location: time.Local,
		Now:      time.Now,
	}
}

// ParsePickupTime accepts RFC 3339 or an HTML datetime-local value, the
// latter read in the café's time zone.
func (s *CheckoutService) ParsePickupTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range pickupLayouts {
		if t, err := time.ParseInLocation(layout, value, s.Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.ErrInvalidPickupWindow
}

// Checkout validates the request in a fixed order, then writes the order,
// its lines and any masked payment detail in one transaction after
// re-checking stock under row locks. The cart is cleared only on success.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, in CheckoutInput) (*models.Order, error) {
	defer in.Card.Wipe()

	if c.Empty() {
		return nil, apperrors.ErrEmptyCart
	}

	now := s.Now()
	pickup, err := s.ParsePickupTime(in.PickupTime)
	if err != nil {
		return nil, err
	}
	if pickup.Before(now.Add(minPickupLead)) || pickup.After(now.Add(maxPickupLead)) {
		return nil, apperrors.ErrInvalidPickupWindow
	}

	var payment *models.PaymentDetail
	switch in.PaymentMethod {
	case models.PaymentCash:
	case models.PaymentCard:
		if !validation.CardBytes(in.Card.Number, in.Card.Expiry, in.Card.CVV) {
			return nil, apperrors.ErrInvalidCardDetails
		}
		payment = &models.PaymentDetail{
			CardLast4:  string(in.Card.Number[len(in.Card.Number)-4:]),
			CardExpiry: in.Card.Expiry,
		}
		in.Card.Wipe()
	default:
		return nil, apperrors.ErrInvalidPaymentMethod
	}

	order := &models.Order{
		UserID:        in.UserID,
		OrderNumber:   orderNumber(now),
		TotalAmount:   c.Total(),
		PickupTime:    pickup,
		PaymentMethod: in.PaymentMethod,
		Status:        models.OrderStatusPending,
		Payment:       payment,
	}
	for _, line := range c.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: line.ItemID,
			ItemName:   line.Name,
			Price:      line.Price,
			Quantity:   line.Quantity,
		})
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reserveStock(txCtx, c.Items); err != nil {
			return err
		}
		return s.orders.Create(txCtx, order)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) || errors.Is(err, apperrors.ErrItemUnavailable) {
			return nil, err
		}
		log.Printf("[Checkout] order for user %s rolled back: %v", in.UserID, err)
		return nil, apperrors.ErrOrderProcessingFailed
	}

	c.Clear()
	s.notify(order, in.CustomerName)
	return order, nil
}

// reserveStock locks every menu row in id order, verifies the cart still
// fits, and decrements stock.
func (s *CheckoutService) reserveStock(ctx context.Context, lines []cart.Item) error {
	wanted := map[uuid.UUID]int{}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := wanted[line.ItemID]; !ok {
			ids = append(ids, line.ItemID)
		}
		wanted[line.ItemID] += line.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		item, err := s.menu.FindByIDForUpdate(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrItemUnavailable
		}
		if err != nil {
			return fmt.Errorf("lock menu item %s: %w", id, err)
		}
		if !item.IsAvailable {
			return apperrors.ErrItemUnavailable
		}
		if wanted[id] > item.Stock {
			return &apperrors.StockError{Item: item.Name, Available: item.Stock}
		}
		if err := s.menu.DecrementStock(ctx, id, wanted[id]); err != nil {
			return fmt.Errorf("decrement stock %s: %w", id, err)
		}
	}
	return nil
}

func (s *CheckoutService) notify(order *models.Order, customer string) {
	if s.notifier == nil {
		return
	}
	msg := OrderNotification{
		OrderNumber:   order.OrderNumber,
		CustomerName:  customer,
		PickupTime:    order.PickupTime,
		PaymentMethod: order.PaymentMethod,
		Total:         order.TotalAmount,
	}
	for _, item := range order.Items {
		msg.Items = append(msg.Items, OrderItemNotification{Name: item.ItemName, Quantity: item.Quantity, Price: item.Price})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.NotifyNewOrder(ctx, msg); err != nil {
			log.Printf("[Checkout] staff notification for %s failed: %v", msg.OrderNumber, err)
		}
	}()
}

func orderNumber(now time.Time) string {
	suffix, err := utils.RandomHex(3)
	if err != nil {
		suffix = fmt.Sprintf("%06d", now.UnixNano()%1000000)
	}
	return fmt.Sprintf("MB-%s-%s", now.Format("060102"), strings.ToUpper(suffix))
}

// Orders lists a user's orders, newest first.
func (s *CheckoutService) Orders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	return s.orders.ListForUser(ctx, userID, limit, offset)
}

// Order returns one of the user's orders.
func (s *CheckoutService) Order(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.FindForUser(ctx, orderID, userID)
}
