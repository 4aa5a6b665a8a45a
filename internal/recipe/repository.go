package recipe

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("recipe not found")
)

// Repository defines persistence operations for recipes.
type Repository interface {
	// List returns recipes newest first with IngredientCount set and
	// Ingredients left empty.
	List(ctx context.Context) ([]Recipe, error)
	// GetByID returns the recipe with its ingredients ordered by id.
	GetByID(ctx context.Context, id int) (Recipe, error)
	Create(ctx context.Context, r Recipe) (Recipe, error)
	// Update replaces name, description and every ingredient of recipe id.
	Update(ctx context.Context, id int, r Recipe) (Recipe, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository keeps recipes in a slice. It does not know about
// products, so product fields on ingredients are left for the service to fill.
type InMemoryRepository struct {
	mu               sync.RWMutex
	storage          []Recipe
	nextID           int
	nextIngredientID int
	now              func() time.Time
}

func NewInMemoryRepository(seed []Recipe) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Recipe, 0, len(seed)),
		now:     func() time.Time { return time.Now().UTC() },
	}

	maxID, maxIngredientID := 0, 0
	for _, rec := range seed {
		r.storage = append(r.storage, cloneRecipe(rec))
		if rec.ID > maxID {
			maxID = rec.ID
		}
		for _, ing := range rec.Ingredients {
			if ing.ID > maxIngredientID {
				maxIngredientID = ing.ID
			}
		}
	}
	r.nextID = maxID + 1
	r.nextIngredientID = maxIngredientID + 1
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Recipe, 0, len(r.storage))
	for _, rec := range r.storage {
		rec.IngredientCount = len(rec.Ingredients)
		rec.Ingredients = nil
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.storage {
		if rec.ID == id {
			out := cloneRecipe(rec)
			out.IngredientCount = len(out.Ingredients)
			return out, nil
		}
	}
	return Recipe{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, rec Recipe) (Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	now := r.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.Ingredients = r.assignIngredients(rec.ID, rec.Ingredients)
	rec.IngredientCount = len(rec.Ingredients)
	r.storage = append(r.storage, cloneRecipe(rec))
	return cloneRecipe(rec), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int, rec Recipe) (Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			rec.ID = id
			rec.CreatedAt = r.storage[i].CreatedAt
			rec.UpdatedAt = r.now()
			rec.Ingredients = r.assignIngredients(id, rec.Ingredients)
			rec.IngredientCount = len(rec.Ingredients)
			r.storage[i] = cloneRecipe(rec)
			return cloneRecipe(rec), nil
		}
	}
	return Recipe{}, ErrNotFound
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

// assignIngredients stores only the columns the database keeps.
func (r *InMemoryRepository) assignIngredients(recipeID int, ings []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(ings))
	for _, ing := range ings {
		out = append(out, Ingredient{
			ID:        r.nextIngredientID,
			RecipeID:  recipeID,
			ProductID: ing.ProductID,
			Quantity:  ing.Quantity,
			Unit:      ing.Unit,
		})
		r.nextIngredientID++
	}
	return out
}

func cloneRecipe(rec Recipe) Recipe {
	if rec.Ingredients != nil {
		ings := make([]Ingredient, len(rec.Ingredients))
		copy(ings, rec.Ingredients)
		rec.Ingredients = ings
	}
	return rec
}
