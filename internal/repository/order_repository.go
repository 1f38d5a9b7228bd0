package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cheflink/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrDuplicateID = errors.New("order id already exists")
)

// OrderFilter narrows a listing. Nil bounds are open; both bounds are inclusive.
type OrderFilter struct {
	DateStart *time.Time
	DateEnd   *time.Time
	Skip      int
	Limit     int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// Update locks the row, applies mutate and persists the result in one transaction.
	// An error from mutate rolls the transaction back and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error)
	Delete(ctx context.Context, id string) (*models.Order, error)
	// MaxIDWithPrefix returns the highest id starting with prefix, or "" when none exists.
	MaxIDWithPrefix(ctx context.Context, prefix string) (string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, order.ID)
	}
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, id)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.DateStart != nil {
		query = query.Where("created_at >= ?", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		query = query.Where("created_at <= ?", *filter.DateEnd)
	}
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	orders := []models.Order{}
	err := query.Order("created_at ASC").Order("id ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockByID(tx, id, &order); err != nil {
			return err
		}
		if err := mutate(&order); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockByID(tx, id, &order); err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MaxIDWithPrefix orders by length first so that a widened suffix (10000 and up)
// still sorts above 9999.
func (r *orderRepository) MaxIDWithPrefix(ctx context.Context, prefix string) (string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id LIKE ?", prefix+"%").
		Order("LENGTH(id) DESC").
		Order("id DESC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func lockByID(tx *gorm.DB, id string, order *models.Order) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(order, "id = ?", id).Error
	if err != nil {
		return translate(err, id)
	}
	return nil
}

func translate(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
