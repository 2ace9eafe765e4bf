package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"coursefeedback/internal/services"
	"coursefeedback/internal/sessions"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for login, logout, and auth checks.
type AuthHandler struct {
	accountService *services.AccountService
	sessionStore   sessions.Store
	validate       *validator.Validate
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be true
// whenever the app is served over HTTPS.
func NewAuthHandler(accountService *services.AccountService, sessionStore sessions.Store, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessionStore:   sessionStore,
		validate:       validator.New(),
		secureCookies:  secureCookies,
	}
}

// RegisterRoutes registers the auth routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/login", h.HandleLogin)
	router.Post("/logout", h.HandleLogout)
	router.Get("/check-auth", h.HandleCheckAuth)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates by email and password, auto-registering the
// email on first sight, and establishes a session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorMessages := make(map[string]string)
			for _, e := range validationErrors {
				errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Email and password are required",
				"fields": errorMessages,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	}

	account, wasCreated, err := h.accountService.ResolveOrCreate(req.Email, req.Password)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email and password are required",
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		default:
			log.Printf("Login failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to log in",
			})
		}
	}

	token, err := h.sessionStore.Create(account.ID, account.Email)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessions.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if wasCreated {
		log.Printf("Registered new account for %s", account.Email)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"email":   account.Email,
	})
}

// HandleLogout clears the current session. It always reports success,
// even without a session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if token := c.Cookies(sessions.CookieName); token != "" {
		if err := h.sessionStore.Delete(token); err != nil {
			log.Printf("Failed to delete session on logout: %v", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessions.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleCheckAuth reports whether the caller has a live session. It never
// fails: store errors degrade to an unauthenticated answer.
func (h *AuthHandler) HandleCheckAuth(c *fiber.Ctx) error {
	token := c.Cookies(sessions.CookieName)
	if token == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	session, ok, err := h.sessionStore.Get(token)
	if err != nil {
		log.Printf("Session lookup failed during auth check: %v", err)
		return c.JSON(fiber.Map{"authenticated": false})
	}
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"email":         session.Email,
	})
}
