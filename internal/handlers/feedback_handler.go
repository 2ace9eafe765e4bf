package handlers

import (
	"errors"
	"log"

	"coursefeedback/internal/middleware"
	"coursefeedback/internal/models"
	"coursefeedback/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles HTTP requests for feedback entries. All routes
// sit behind the session middleware; the owning account always comes from
// context locals, never from the request body.
type FeedbackHandler struct {
	service *services.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
	}
}

// RegisterRoutes registers the feedback routes with the Fiber app.
func (h *FeedbackHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/feedback", h.HandleSubmit)
	router.Get("/feedback", h.HandleList)
	router.Delete("/feedback/clear", h.HandleClear)
}

// SubmitFeedbackRequest represents the request body for a submission.
// Rating stays untyped so the service can coerce both JSON numbers and
// numeric strings.
type SubmitFeedbackRequest struct {
	CourseName string `json:"courseName"`
	Rating     any    `json:"rating"`
	Comments   string `json:"comments"`
}

// HandleSubmit validates and stores a new feedback entry.
func (h *FeedbackHandler) HandleSubmit(c *fiber.Ctx) error {
	accountID := c.Locals(middleware.LocalAccountID).(string)

	var req SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	}

	entry, err := h.service.Submit(accountID, req.CourseName, req.Rating, req.Comments)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": vErr.Error(),
				"field": vErr.Field,
			})
		}
		log.Printf("Failed to save feedback for account %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save feedback",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"feedback": entry.ToResponse(),
	})
}

// HandleList returns the caller's feedback entries, newest first.
func (h *FeedbackHandler) HandleList(c *fiber.Ctx) error {
	accountID := c.Locals(middleware.LocalAccountID).(string)

	entries, err := h.service.List(accountID)
	if err != nil {
		log.Printf("Failed to list feedback for account %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load feedback",
		})
	}

	responses := make([]models.FeedbackResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, entries[i].ToResponse())
	}
	return c.JSON(responses)
}

// HandleClear deletes all of the caller's feedback entries. Clearing an
// account with no entries still succeeds.
func (h *FeedbackHandler) HandleClear(c *fiber.Ctx) error {
	accountID := c.Locals(middleware.LocalAccountID).(string)

	deleted, err := h.service.ClearAll(accountID)
	if err != nil {
		log.Printf("Failed to clear feedback for account %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear feedback",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}
