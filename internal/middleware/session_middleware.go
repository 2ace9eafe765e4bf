package middleware

import (
	"errors"
	"log"

	"coursefeedback/internal/repositories"
	"coursefeedback/internal/services"
	"coursefeedback/internal/sessions"

	"github.com/gofiber/fiber/v2"
)

// Context locals set by SessionRequired for downstream handlers.
const (
	LocalAccountID = "account_id"
	LocalEmail     = "email"
)

// SessionRequired is a Fiber middleware that resolves the session cookie
// to an authenticated account. Requests without a live session are
// rejected with 401 before any feedback handler runs; handlers read the
// resolved identity from locals and never trust identifiers in the body.
func SessionRequired(store sessions.Store, accountService *services.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessions.CookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		session, ok, err := store.Get(token)
		if err != nil {
			log.Printf("Session lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		// The session may outlive its account. Treat that as an
		// ordinary unauthenticated request and drop the stale session.
		account, err := accountService.FindByID(session.AccountID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				if delErr := store.Delete(token); delErr != nil {
					log.Printf("Failed to drop stale session: %v", delErr)
				}
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Not authenticated",
				})
			}
			log.Printf("Account lookup for session failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		c.Locals(LocalAccountID, account.ID)
		c.Locals(LocalEmail, account.Email)

		return c.Next()
	}
}
