package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(secret))
	app.Get("/api/things", func(c *fiber.Ctx) error {
		return c.SendString("list")
	})
	app.Post("/api/things", func(c *fiber.Ctx) error {
		return c.SendString(SubjectFromContext(c.UserContext()))
	})
	return app
}

func TestMiddleware_ReadsArePublic(t *testing.T) {
	res, err := newApp(secret).Test(httptest.NewRequest("GET", "/api/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestMiddleware_WritesNeedToken(t *testing.T) {
	res, err := newApp(secret).Test(httptest.NewRequest("POST", "/api/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMiddleware_ValidTokenSetsSubject(t *testing.T) {
	token, err := IssueToken(secret, "chef", time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/things", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := newApp(secret).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "chef", string(body))
}

func TestMiddleware_RejectsExpiredOrForeignTokens(t *testing.T) {
	expired, err := IssueToken(secret, "chef", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", "chef", time.Hour, time.Now())
	require.NoError(t, err)

	for _, token := range []string{expired, foreign} {
		req := httptest.NewRequest("POST", "/api/things", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := newApp(secret).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	}
}

func TestMiddleware_DisabledWithoutSecret(t *testing.T) {
	res, err := newApp("").Test(httptest.NewRequest("POST", "/api/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestIssueToken_Errors(t *testing.T) {
	_, err := IssueToken("", "chef", time.Hour, time.Now())
	assert.Error(t, err)
	_, err = IssueToken(secret, "chef", 0, time.Now())
	assert.Error(t, err)
}
