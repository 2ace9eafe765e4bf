package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursefeedback/internal/middleware"
	"coursefeedback/internal/models"
	"coursefeedback/internal/repositories"
	"coursefeedback/internal/services"
	"coursefeedback/internal/sessions"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenSessionStore simulates an unreachable session backend.
type brokenSessionStore struct{}

func (brokenSessionStore) Create(accountID, email string) (string, error) {
	return "", errors.New("dial tcp 10.0.0.5:6379: connection refused")
}

func (brokenSessionStore) Get(token string) (*sessions.Session, bool, error) {
	return nil, false, errors.New("dial tcp 10.0.0.5:6379: connection refused")
}

func (brokenSessionStore) Delete(token string) error {
	return errors.New("dial tcp 10.0.0.5:6379: connection refused")
}

// newProtectedApp wires a single protected route behind SessionRequired.
func newProtectedApp(store sessions.Store, accountService *services.AccountService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.SessionRequired(store, accountService), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"accountId": c.Locals(middleware.LocalAccountID),
			"email":     c.Locals(middleware.LocalEmail),
		})
	})
	return app
}

func doProtected(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessions.CookieName, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSessionRequired_ResolvesIdentity(t *testing.T) {
	accountRepo := repositories.NewMockAccountRepository()
	account := &models.Account{Email: "user@example.com", PasswordHash: "x"}
	require.NoError(t, accountRepo.Create(account))

	store := sessions.NewMemoryStore(time.Hour)
	token, err := store.Create(account.ID, account.Email)
	require.NoError(t, err)

	app := newProtectedApp(store, services.NewAccountService(accountRepo))

	resp := doProtected(t, app, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, account.ID, body["accountId"])
	assert.Equal(t, "user@example.com", body["email"])
}

func TestSessionRequired_RejectsMissingSession(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	app := newProtectedApp(store, services.NewAccountService(repositories.NewMockAccountRepository()))

	resp := doProtected(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doProtected(t, app, "unknown-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionRequired_DropsSessionForDeletedAccount(t *testing.T) {
	// The account behind the session no longer exists: the request must
	// come back 401 and the stale token must be removed from the store.
	accountRepo := repositories.NewMockAccountRepository()
	store := sessions.NewMemoryStore(time.Hour)

	token, err := store.Create("acct-gone", "gone@example.com")
	require.NoError(t, err)

	app := newProtectedApp(store, services.NewAccountService(accountRepo))

	resp := doProtected(t, app, token)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "Not authenticated", body["error"])

	_, ok, err := store.Get(token)
	require.NoError(t, err)
	assert.False(t, ok, "stale session should have been deleted")
}

func TestSessionRequired_StoreFailureIsGeneric500(t *testing.T) {
	app := newProtectedApp(brokenSessionStore{}, services.NewAccountService(repositories.NewMockAccountRepository()))

	resp := doProtected(t, app, "some-token")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	// The client gets a generic message, never connection internals.
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body["error"], "connection refused")
	assert.NotContains(t, body["error"], "10.0.0.5")
}
