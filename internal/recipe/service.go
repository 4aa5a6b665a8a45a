package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/recipe-costing-backend/internal/auth"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
	"github.com/wichananm65/recipe-costing-backend/internal/product"
	"github.com/wichananm65/recipe-costing-backend/internal/validation"
	"go.uber.org/zap"
)

// ProductSource resolves the products a recipe refers to.
type ProductSource interface {
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

// CostLine is a priced ingredient with its cost already formatted.
type CostLine struct {
	cost.Line
	FormattedCost string `json:"formatted_cost"`
}

// CostSummary is what the API returns for a recipe cost calculation.
type CostSummary struct {
	RecipeID       int             `json:"recipe_id,omitempty"`
	RecipeName     string          `json:"recipe_name,omitempty"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	CurrencySymbol string          `json:"currency_symbol"`
	UnitMode       cost.UnitMode   `json:"unit_mode"`
	Complete       bool            `json:"complete"`
	Lines          []CostLine      `json:"lines"`
	Warnings       []cost.Warning  `json:"warnings"`
}

// Service provides business logic for recipes and their costs.
type Service struct {
	repo      Repository
	products  ProductSource
	engine    *cost.Engine
	formatter cost.Formatter
	logger    *zap.Logger
}

func NewService(repo Repository, products ProductSource, engine *cost.Engine, formatter cost.Formatter, logger *zap.Logger) *Service {
	if engine == nil {
		engine = cost.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		products:  products,
		engine:    engine,
		formatter: formatter,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	return s.repo.List(ctx)
}

// GetByID returns the recipe with product names and vendors on every ingredient.
func (s *Service) GetByID(ctx context.Context, id int) (Recipe, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	products, err := s.products.ListByIDs(ctx, productIDs(rec.Ingredients))
	if err != nil {
		return Recipe{}, err
	}
	enrich(&rec, products)
	return rec, nil
}

func (s *Service) Create(ctx context.Context, rec Recipe) (Recipe, error) {
	rec, products, err := s.prepare(ctx, rec)
	if err != nil {
		return Recipe{}, err
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Recipe{}, err
	}
	enrich(&created, products)
	s.logger.Info("recipe created",
		zap.Int("recipe_id", created.ID),
		zap.Int("ingredients", len(created.Ingredients)),
		zap.String("by", auth.SubjectFromContext(ctx)),
	)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int, rec Recipe) (Recipe, error) {
	rec, products, err := s.prepare(ctx, rec)
	if err != nil {
		return Recipe{}, err
	}
	updated, err := s.repo.Update(ctx, id, rec)
	if err != nil {
		return Recipe{}, err
	}
	enrich(&updated, products)
	s.logger.Info("recipe updated",
		zap.Int("recipe_id", id),
		zap.Int("ingredients", len(updated.Ingredients)),
		zap.String("by", auth.SubjectFromContext(ctx)),
	)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Cost prices a stored recipe against the current default vendor offers.
func (s *Service) Cost(ctx context.Context, id int) (CostSummary, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CostSummary{}, err
	}
	summary, err := s.price(ctx, rec.Ingredients)
	if err != nil {
		return CostSummary{}, fmt.Errorf("recipe %d: %w", id, err)
	}
	summary.RecipeID = rec.ID
	summary.RecipeName = rec.Name
	return summary, nil
}

// Preview prices an unsaved ingredient list. Ingredients are validated for
// shape only; products that do not exist are handled by the engine's policy.
func (s *Service) Preview(ctx context.Context, ings []Ingredient) (CostSummary, error) {
	errs := validation.Errors{}
	ings = normalizeIngredients(ings, errs)
	if err := errs.Err(); err != nil {
		return CostSummary{}, err
	}
	return s.price(ctx, ings)
}

func (s *Service) price(ctx context.Context, ings []Ingredient) (CostSummary, error) {
	products, err := s.products.ListByIDs(ctx, productIDs(ings))
	if err != nil {
		return CostSummary{}, err
	}
	breakdown, err := s.engine.RecipeCost(costIngredients(ings), product.NewCatalog(products))
	if err != nil {
		return CostSummary{}, err
	}

	summary := CostSummary{
		Total:          breakdown.Total,
		FormattedTotal: s.formatter.Format(breakdown.Total),
		CurrencySymbol: s.formatter.Symbol,
		UnitMode:       s.engine.Units().Mode(),
		Complete:       breakdown.Complete(),
		Lines:          make([]CostLine, 0, len(breakdown.Lines)),
		Warnings:       breakdown.Warnings,
	}
	if summary.Warnings == nil {
		summary.Warnings = []cost.Warning{}
	}
	for _, line := range breakdown.Lines {
		summary.Lines = append(summary.Lines, CostLine{Line: line, FormattedCost: s.formatter.Format(line.Cost)})
	}
	for _, w := range breakdown.Warnings {
		s.logger.Warn("ingredient counted as zero",
			zap.Int("index", w.Index),
			zap.Int("product_id", w.ProductID),
			zap.String("kind", string(w.Kind)),
			zap.String("reason", w.Message),
		)
	}
	return summary, nil
}

// prepare normalizes and validates a recipe payload and checks that every
// referenced product exists. It returns the loaded products for enrichment.
func (s *Service) prepare(ctx context.Context, rec Recipe) (Recipe, []product.Product, error) {
	errs := validation.Errors{}

	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		errs.Add("name", "Recipe name is required")
	}
	if rec.Description != nil {
		d := strings.TrimSpace(*rec.Description)
		if d == "" {
			rec.Description = nil
		} else {
			rec.Description = &d
		}
	}
	if len(rec.Ingredients) == 0 {
		errs.Add("ingredients", "At least one ingredient is required")
	}
	rec.Ingredients = normalizeIngredients(rec.Ingredients, errs)
	if err := errs.Err(); err != nil {
		return Recipe{}, nil, err
	}

	products, err := s.products.ListByIDs(ctx, productIDs(rec.Ingredients))
	if err != nil {
		return Recipe{}, nil, err
	}
	known := make(map[int]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}
	for i, ing := range rec.Ingredients {
		if _, ok := known[ing.ProductID]; !ok {
			errs.Add(ingredientField(i, "product_id"), "Product %d not found", ing.ProductID)
		}
	}
	if err := errs.Err(); err != nil {
		return Recipe{}, nil, err
	}
	return rec, products, nil
}

func normalizeIngredients(ings []Ingredient, errs validation.Errors) []Ingredient {
	out := make([]Ingredient, 0, len(ings))
	for i, ing := range ings {
		if ing.ProductID <= 0 {
			errs.Add(ingredientField(i, "product_id"), "Product is required")
		}
		if !validation.PositiveAmount(ing.Quantity) {
			errs.Add(ingredientField(i, "quantity"), "Valid quantity is required")
		}
		if strings.TrimSpace(ing.Unit) == "" {
			errs.Add(ingredientField(i, "unit"), "Unit is required")
		} else if u, err := cost.ParseUnit(ing.Unit); err != nil {
			errs.Add(ingredientField(i, "unit"), "Unknown unit %q", ing.Unit)
		} else {
			ing.Unit = string(u)
		}
		out = append(out, Ingredient{ProductID: ing.ProductID, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	return out
}

func ingredientField(i int, name string) string {
	return fmt.Sprintf("ingredient_%d_%s", i, name)
}

func enrich(rec *Recipe, products []product.Product) {
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range rec.Ingredients {
		p, ok := byID[rec.Ingredients[i].ProductID]
		if !ok {
			continue
		}
		rec.Ingredients[i].ProductName = p.Name
		rec.Ingredients[i].ProductDescription = p.Description
		rec.Ingredients[i].Vendors = p.Vendors
	}
}
