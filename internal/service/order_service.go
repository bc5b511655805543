package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/messaging"
	"github.com/egannguyen/petsupplies/internal/metrics"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const maxAppendAttempts = 3

// CreateOrderRequest records an order whose stock was already reconciled by Purchase.
type CreateOrderRequest struct {
	CustomerDetails entity.CustomerDetails `json:"customerDetails"`
	Items           []entity.OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
}

// OrderHistory is the replayed event stream of one order.
type OrderHistory struct {
	OrderID     string                      `json:"orderId"`
	Version     int                         `json:"version"`
	Status      entity.OrderStatus          `json:"status"`
	PlacedAt    time.Time                   `json:"placedAt"`
	Transitions []entity.OrderStatusChanged `json:"transitions"`
}

// OrderService reconciles carts against stock and manages the order lifecycle.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	eventStore  repository.EventStore
	carts       *CartService
	publisher   messaging.Publisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	eventStore repository.EventStore,
	carts *CartService,
	publisher messaging.Publisher,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		eventStore:  eventStore,
		carts:       carts,
		publisher:   publisher,
		metrics:     m,
		now:         time.Now,
	}
}

// Purchase decrements stock line by line. It is best effort: lines that succeed keep
// their decrement even when a later line fails. Once started, a decrement is not
// abandoned because the caller went away.
func (s *OrderService) Purchase(ctx context.Context, lines []entity.PurchaseLine) []entity.ItemResult {
	ctx = context.WithoutCancel(ctx)
	results := make([]entity.ItemResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, s.purchaseLine(ctx, line.ProductID, "", line.Quantity))
	}
	return results
}

func (s *OrderService) purchaseLine(ctx context.Context, productID, name string, quantity int) entity.ItemResult {
	res := entity.ItemResult{ProductID: productID, Name: name}
	if name == "" {
		if p, err := s.productRepo.FindByID(ctx, productID); err == nil {
			res.Name = p.Name
		} else {
			res.Name = productID
		}
	}

	err := s.productRepo.DecrementStock(ctx, productID, quantity)
	switch {
	case err == nil:
		res.Success = true
		res.Message = "Purchase successful"
	case entity.IsInsufficientStock(err):
		var ise *entity.InsufficientStockError
		if errors.As(err, &ise) {
			res.Message = fmt.Sprintf("Insufficient stock. Only %d available.", ise.Available)
		} else {
			res.Message = "Insufficient stock"
		}
		if s.metrics != nil {
			s.metrics.StockRejections.WithLabelValues(productID).Inc()
		}
	case entity.IsNotFound(err):
		res.Message = "Product not found"
	case entity.IsValidation(err):
		res.Message = "Invalid quantity"
	default:
		slog.Error("Failed to decrement stock", "product_id", productID, "err", err)
		res.Message = "Could not reserve stock"
	}
	res.Err = err
	return res
}

func (s *OrderService) observeCheckout(outcome string) {
	if s.metrics != nil {
		s.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}
}

// Checkout reconciles the session's cart against live stock. When every line is
// decremented an Order is placed and the cart is cleared; otherwise a *entity.CheckoutError
// lists every line and the cart is left as it was.
func (s *OrderService) Checkout(ctx context.Context, sessionID string, details entity.CustomerDetails) (*entity.Order, error) {
	if err := details.Validate(); err != nil {
		s.observeCheckout(metrics.OutcomeInvalid)
		return nil, err
	}

	var order *entity.Order
	err := s.carts.settle(ctx, sessionID, func(cart *entity.Cart) error {
		if cart.IsEmpty() {
			return entity.NewValidationError("cart", "is empty", 0)
		}
		slog.Info("Service: Checking out cart", "session_id", sessionID, "items", len(cart.Items))

		items := cart.Snapshot()
		stockCtx := context.WithoutCancel(ctx)
		results := make([]entity.ItemResult, 0, len(items))
		failed := false
		for _, item := range items {
			res := s.purchaseLine(stockCtx, item.ID, item.Name, item.Quantity)
			failed = failed || !res.Success
			results = append(results, res)
		}
		if failed {
			return &entity.CheckoutError{Results: results}
		}

		now := s.now()
		o := entity.Order{
			ID:              uuid.NewString(),
			CustomerDetails: details,
			Items:           entity.OrderItemsFromCart(items),
			TotalAmount:     cart.Total(),
			Status:          entity.StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.place(stockCtx, o); err != nil {
			return err
		}
		order = &o
		return nil
	})

	var ce *entity.CheckoutError
	switch {
	case err == nil:
		s.observeCheckout(metrics.OutcomeSuccess)
		return order, nil
	case errors.As(err, &ce):
		slog.Warn("Checkout partially failed", "session_id", sessionID, "failed", len(ce.Failed()))
		s.observeCheckout(metrics.OutcomePartial)
	case entity.IsValidation(err):
		s.observeCheckout(metrics.OutcomeInvalid)
	}
	return nil, err
}

// CreateOrder records an order from explicit items. totalAmount must match the items.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*entity.Order, error) {
	if err := req.CustomerDetails.Validate(); err != nil {
		return nil, err
	}
	if err := entity.ValidateItems(req.Items); err != nil {
		return nil, err
	}
	items := make([]entity.OrderItem, len(req.Items))
	copy(items, req.Items)
	// the catalog owns seller attribution; client-sent sellerIds are ignored
	for i := range items {
		p, err := s.productRepo.FindByID(ctx, items[i].ProductID)
		if err != nil {
			return nil, err
		}
		if items[i].Name == "" {
			items[i].Name = p.Name
		}
		if items[i].Image == "" {
			items[i].Image = p.Image
		}
		items[i].SellerID = p.SellerID
	}
	if sum := entity.SumItems(items); !sum.Equal(req.TotalAmount) {
		return nil, entity.NewValidationError("totalAmount", "does not match the sum of items "+sum.String(), req.TotalAmount.String())
	}

	now := s.now()
	o := entity.Order{
		ID:              uuid.NewString(),
		CustomerDetails: req.CustomerDetails,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Status:          entity.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.place(ctx, o); err != nil {
		return nil, err
	}
	return &o, nil
}

// place persists the read model, opens the order's event stream and announces it.
func (s *OrderService) place(ctx context.Context, o entity.Order) error {
	slog.Info("Service: Placing order", "order_id", o.ID, "items", len(o.Items), "total", o.TotalAmount.String())

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	placed := entity.OrderPlaced{
		OrderID:         o.ID,
		CustomerDetails: o.CustomerDetails,
		Items:           o.Items,
		TotalAmount:     o.TotalAmount,
		PlacedAt:        o.CreatedAt,
	}
	if err := s.eventStore.SaveEvents(ctx, o.ID, entity.StreamOrder, 0, []entity.Event{placed}); err != nil {
		return fmt.Errorf("failed to save OrderPlaced event: %w", err)
	}

	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderPlaced, o.ID, placed); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", o.ID, "err", err)
	}
	return nil
}

// UpdateStatus overwrites the order status. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status string) (*entity.Order, error) {
	next := entity.OrderStatus(status)
	if !next.Valid() {
		return nil, entity.NewValidationError("status", "must be one of pending, processing, shipped, delivered, cancelled", status)
	}
	current, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	slog.Info("Service: Updating order status", "order_id", orderID, "from", current.Status, "to", next)
	changed, err := s.appendStatusChange(ctx, *current, next)
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, next, changed.ChangedAt)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderStatusChanged, orderID, changed); err != nil {
		slog.Error("Failed to publish OrderStatusChanged", "order_id", orderID, "err", err)
	}
	return updated, nil
}

// ConfirmCashOnDelivery moves a cash-on-delivery order into processing.
func (s *OrderService) ConfirmCashOnDelivery(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerDetails.PaymentMethod != entity.PaymentCashOnDelivery {
		return nil, entity.NewValidationError("paymentMethod", "order is not cash on delivery", o.CustomerDetails.PaymentMethod)
	}
	return s.UpdateStatus(ctx, orderID, string(entity.StatusProcessing))
}

// appendStatusChange writes an OrderStatusChanged at the stream's current version,
// retrying when a concurrent writer got there first.
func (s *OrderService) appendStatusChange(ctx context.Context, current entity.Order, next entity.OrderStatus) (entity.OrderStatusChanged, error) {
	for attempt := 1; ; attempt++ {
		records, err := s.eventStore.LoadEvents(ctx, current.ID)
		if err != nil {
			return entity.OrderStatusChanged{}, fmt.Errorf("failed to load order history: %w", err)
		}
		agg := entity.NewOrderAggregate(current.ID)
		if err := agg.Rehydrate(records); err != nil {
			return entity.OrderStatusChanged{}, fmt.Errorf("failed to rehydrate order aggregate: %w", err)
		}

		var events []entity.Event
		from := agg.Order.Status
		if agg.Version == 0 {
			// stream missing (order stored before events were kept); open it from the read model
			events = append(events, entity.OrderPlaced{
				OrderID:         current.ID,
				CustomerDetails: current.CustomerDetails,
				Items:           current.Items,
				TotalAmount:     current.TotalAmount,
				PlacedAt:        current.CreatedAt,
			})
			from = current.Status
		}
		changed := entity.OrderStatusChanged{OrderID: current.ID, From: from, To: next, ChangedAt: s.now()}
		events = append(events, changed)

		err = s.eventStore.SaveEvents(ctx, current.ID, entity.StreamOrder, agg.Version, events)
		if err == nil {
			return changed, nil
		}
		if !errors.Is(err, repository.ErrConcurrencyConflict) || attempt >= maxAppendAttempts {
			return entity.OrderStatusChanged{}, fmt.Errorf("failed to save OrderStatusChanged event: %w", err)
		}
		slog.Warn("Order stream moved, retrying status change", "order_id", current.ID, "attempt", attempt)
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]entity.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// ListSellerOrders returns orders holding at least one of the seller's items, each
// carrying the seller-scoped subtotal.
func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID string) ([]entity.Order, error) {
	orders, err := s.orderRepo.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller orders: %w", err)
	}
	out := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if scoped, ok := o.ForSeller(sellerID); ok {
			out = append(out, scoped)
		}
	}
	return out, nil
}

// History replays the order's event stream.
func (s *OrderService) History(ctx context.Context, orderID string) (*OrderHistory, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.eventStore.LoadEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	agg := entity.NewOrderAggregate(orderID)
	if err := agg.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate order aggregate: %w", err)
	}
	transitions := agg.Transitions
	if transitions == nil {
		transitions = []entity.OrderStatusChanged{}
	}
	return &OrderHistory{
		OrderID:     orderID,
		Version:     agg.Version,
		Status:      agg.Order.Status,
		PlacedAt:    agg.Order.CreatedAt,
		Transitions: transitions,
	}, nil
}
