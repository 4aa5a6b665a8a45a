package product

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	// ListByIDs returns the products whose id is in ids, with vendors loaded.
	// Unknown ids are skipped rather than reported.
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	// Update replaces name, description and the full vendor list of product id.
	Update(ctx context.Context, id int, p Product) (Product, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// for running the API without a database.
type InMemoryRepository struct {
	mu           sync.RWMutex
	storage      []Product
	nextID       int
	nextVendorID int
	now          func() time.Time
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:      make([]Product, 0, len(seed)),
		nextID:       1,
		nextVendorID: 1,
		now:          func() time.Time { return time.Now().UTC() },
	}

	maxID, maxVendorID := 0, 0
	for _, p := range seed {
		r.storage = append(r.storage, cloneProduct(p))
		if p.ID > maxID {
			maxID = p.ID
		}
		for _, v := range p.Vendors {
			if v.ID > maxVendorID {
				maxVendorID = v.ID
			}
		}
	}

	r.nextID = maxID + 1
	r.nextVendorID = maxVendorID + 1
	return r
}

// List returns products newest first, matching the Postgres ordering.
func (r *InMemoryRepository) List(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		out = append(out, cloneProduct(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return cloneProduct(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(want))
	for _, p := range r.storage {
		if _, ok := want[p.ID]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Vendors = r.assignVendors(p.ID, p.Vendors)
	r.storage = append(r.storage, cloneProduct(p))
	return cloneProduct(p), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			p.CreatedAt = r.storage[i].CreatedAt
			p.UpdatedAt = r.now()
			p.Vendors = r.assignVendors(id, p.Vendors)
			r.storage[i] = cloneProduct(p)
			return cloneProduct(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// assignVendors numbers new vendor rows and orders them the way the database
// returns them: default first, then by id.
func (r *InMemoryRepository) assignVendors(productID int, vendors []Vendor) []Vendor {
	out := make([]Vendor, 0, len(vendors))
	for _, v := range vendors {
		v.ID = r.nextVendorID
		r.nextVendorID++
		v.ProductID = productID
		out = append(out, v)
	}
	sortVendors(out)
	return out
}

func sortVendors(vendors []Vendor) {
	sort.SliceStable(vendors, func(i, j int) bool {
		if vendors[i].IsDefault != vendors[j].IsDefault {
			return vendors[i].IsDefault
		}
		return vendors[i].ID < vendors[j].ID
	})
}

func cloneProduct(p Product) Product {
	if p.Vendors != nil {
		vendors := make([]Vendor, len(p.Vendors))
		copy(vendors, p.Vendors)
		p.Vendors = vendors
	}
	return p
}
