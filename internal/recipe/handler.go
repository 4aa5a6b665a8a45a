package recipe

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
	"github.com/wichananm65/recipe-costing-backend/internal/validation"
)

// Handler exposes recipe CRUD and cost calculation over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes registers the read-only routes, including the cost
// preview of an unsaved ingredient list.
func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/recipes", h.getRecipes)
	r.Get("/recipes/:id/cost", h.getRecipeCost)
	r.Get("/recipes/:id", h.getRecipe)
	r.Post("/recipes/cost", h.previewCost)
}

// RegisterProtectedRoutes registers the routes that change state, each behind guard.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router, guard fiber.Handler) {
	r.Post("/recipes", guard, h.createRecipe)
	r.Put("/recipes/:id", guard, h.updateRecipe)
	r.Delete("/recipes/:id", guard, h.deleteRecipe)
}

type previewRequest struct {
	Ingredients []Ingredient `json:"ingredients"`
}

func (h *Handler) getRecipes(c *fiber.Ctx) error {
	recipes, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": recipes})
}

func (h *Handler) getRecipe(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid recipe id"})
	}
	rec, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": rec})
}

func (h *Handler) getRecipeCost(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid recipe id"})
	}
	summary, err := h.service.Cost(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

func (h *Handler) previewCost(c *fiber.Ctx) error {
	payload := new(previewRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	summary, err := h.service.Preview(c.UserContext(), payload.Ingredients)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

func (h *Handler) createRecipe(c *fiber.Ctx) error {
	rec := new(Recipe)
	if err := c.BodyParser(rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), *rec)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      created.ID,
		"message": "Recipe created successfully",
		"data":    created,
	})
}

func (h *Handler) updateRecipe(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid recipe id"})
	}
	rec := new(Recipe)
	if err := c.BodyParser(rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	updated, err := h.service.Update(c.UserContext(), id, *rec)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Recipe updated successfully", "data": updated})
}

func (h *Handler) deleteRecipe(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid recipe id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Recipe deleted successfully"})
}

// writeError maps validation, lookup and pricing errors onto status codes.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": ve.Error(), "errors": ve.Fields})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Recipe not found"})
	case cost.IsDataError(err):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		return err
	}
}
