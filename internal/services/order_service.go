package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cheflink/internal/apperror"
	"cheflink/internal/models"
	"cheflink/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// maxCreateAttempts bounds how often CreateOrder recomputes an id after a primary-key collision.
const maxCreateAttempts = 5

type OrderService interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error)
	CreateOrder(ctx context.Context, fields models.OrderFields) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, fields models.OrderFields) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) (*models.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	locker    Locker
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

type Option func(*orderService)

// WithClock replaces time.Now, mainly for tests that pin the calendar day.
func WithClock(now func() time.Time) Option {
	return func(s *orderService) { s.now = now }
}

func NewOrderService(orderRepo repository.OrderRepository, locker Locker, publisher EventPublisher, opts ...Option) OrderService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if publisher == nil {
		publisher = NopPublisher()
	}
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(apperror.FieldName)

	s := &orderService{
		orderRepo: orderRepo,
		locker:    locker,
		publisher: publisher,
		validate:  v,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Skip < 0 || filter.Limit < 0 {
		return nil, apperror.Validation("skip and limit must not be negative")
	}
	if filter.DateStart != nil && filter.DateEnd != nil && filter.DateEnd.Before(*filter.DateStart) {
		return []models.Order{}, nil
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return orders, nil
}

func (s *orderService) CreateOrder(ctx context.Context, fields models.OrderFields) (*models.Order, error) {
	if err := s.validateFields(fields); err != nil {
		return nil, err
	}

	// timestamptz keeps microseconds
	now := s.now().Truncate(time.Microsecond).In(models.StoreZone)
	prefix := OrderIDPrefix(now)

	release, err := s.locker.Lock(ctx, "order-id:"+prefix)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("acquire id lock: %w", err))
	}
	defer release()

	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		id, err := NextOrderID(ctx, s.orderRepo, now)
		if err != nil {
			return nil, apperror.Storage(fmt.Errorf("next order id: %w", err))
		}

		order := &models.Order{
			ID:            id,
			CreatedAt:     now,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentUnpaid,
		}
		order.Apply(fields)

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			s.publisher.Publish(ctx, EventOrderCreated, order.ID, order)
			return order, nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			return nil, apperror.Storage(err)
		}

		lastErr = err
		log.Warn().Str("order_id", id).Int("attempt", attempt).Msg("order id collision, retrying")
	}

	return nil, apperror.Conflict("could not assign a unique order id, please retry", lastErr)
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, fields models.OrderFields) (*models.Order, error) {
	if err := s.validateFields(fields); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.Update(ctx, id, func(o *models.Order) error {
		o.Apply(fields)
		return nil
	})
	if err != nil {
		return nil, s.translate(err, id)
	}

	s.publisher.Publish(ctx, EventOrderUpdated, order.ID, order)
	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown order status %q", status))
	}

	var previous models.OrderStatus
	order, err := s.orderRepo.Update(ctx, id, func(o *models.Order) error {
		previous = o.Status
		o.Status = status
		return nil
	})
	if err != nil {
		return nil, s.translate(err, id)
	}

	s.publisher.Publish(ctx, EventOrderStatusChanged, order.ID, StatusChange{
		OrderID: order.ID,
		From:    string(previous),
		To:      string(order.Status),
	})
	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown payment status %q", status))
	}

	var previous models.PaymentStatus
	order, err := s.orderRepo.Update(ctx, id, func(o *models.Order) error {
		previous = o.PaymentStatus
		o.PaymentStatus = status
		return nil
	})
	if err != nil {
		return nil, s.translate(err, id)
	}

	s.publisher.Publish(ctx, EventOrderPaymentStatusChanged, order.ID, StatusChange{
		OrderID: order.ID,
		From:    string(previous),
		To:      string(order.PaymentStatus),
	})
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}

	s.publisher.Publish(ctx, EventOrderDeleted, order.ID, order)
	return order, nil
}

// StatusChange is the payload of status and payment-status events.
type StatusChange struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

func (s *orderService) validateFields(fields models.OrderFields) error {
	if err := s.validate.Struct(fields); err != nil {
		return apperror.FromValidator("", err)
	}
	return nil
}

func (s *orderService) translate(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(fmt.Sprintf("order %s not found", id))
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Storage(err)
}
