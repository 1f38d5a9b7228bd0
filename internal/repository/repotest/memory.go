// Package repotest provides an in-memory OrderRepository for tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cheflink/internal/models"
	"cheflink/internal/repository"
)

// MemoryOrderRepository mirrors the gorm repository's observable behaviour:
// primary-key uniqueness, insertion order, inclusive date bounds and copy semantics.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders []*models.Order

	// Err, when set, is returned by every call.
	Err error
}

var _ repository.OrderRepository = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.indexOf(order.ID) >= 0 {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateID, order.ID)
	}
	r.orders = append(r.orders, order.Clone())
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return r.orders[i].Clone(), nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := []models.Order{}
	skipped := 0
	for _, o := range r.orders {
		if filter.DateStart != nil && o.CreatedAt.Before(*filter.DateStart) {
			continue
		}
		if filter.DateEnd != nil && o.CreatedAt.After(*filter.DateEnd) {
			continue
		}
		if skipped < filter.Skip {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, *o.Clone())
	}
	return out, nil
}

func (r *MemoryOrderRepository) Update(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	working := r.orders[i].Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	r.orders[i] = working
	return working.Clone(), nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	deleted := r.orders[i]
	r.orders = append(r.orders[:i], r.orders[i+1:]...)
	return deleted, nil
}

func (r *MemoryOrderRepository) MaxIDWithPrefix(ctx context.Context, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	best := ""
	for _, o := range r.orders {
		if !strings.HasPrefix(o.ID, prefix) {
			continue
		}
		if len(o.ID) > len(best) || (len(o.ID) == len(best) && o.ID > best) {
			best = o.ID
		}
	}
	return best, nil
}

// Len reports how many orders are stored.
func (r *MemoryOrderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *MemoryOrderRepository) indexOf(id string) int {
	for i, o := range r.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
