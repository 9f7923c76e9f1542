package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("tech1", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tech1", claims.Nick)
	assert.True(t, claims.Admin)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	other := NewTokenManager("other", 5)

	token, _, err := other.GenerateToken("tech1", false)
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.GenerateToken("tech1", false)
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

type stubUsers map[string]*domain.User

func (s stubUsers) GetByNick(_ context.Context, nick string) (*domain.User, error) {
	if user, ok := s[nick]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestApp(tm *TokenManager, users UserLookup) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.SendStatus(fe.Code)
			}
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Nick())
	})
	app.Post("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	users := stubUsers{
		"tech1": {Nick: "tech1", Enabled: true},
		"boss":  {Nick: "boss", Enabled: true, Admin: true},
		"gone":  {Nick: "gone", Enabled: false},
	}
	app := newTestApp(tm, users)

	bearer := func(nick string) string {
		token, _, err := tm.GenerateToken(nick, false)
		require.NoError(t, err)
		return "Bearer " + token
	}

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{name: "missing header", method: http.MethodGet, path: "/me", want: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/me", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "valid user", method: http.MethodGet, path: "/me", header: bearer("tech1"), want: http.StatusOK},
		{name: "unknown user", method: http.MethodGet, path: "/me", header: bearer("nobody"), want: http.StatusUnauthorized},
		{name: "disabled user", method: http.MethodGet, path: "/me", header: bearer("gone"), want: http.StatusUnauthorized},
		{name: "non admin", method: http.MethodPost, path: "/admin", header: bearer("tech1"), want: http.StatusForbidden},
		{name: "admin", method: http.MethodPost, path: "/admin", header: bearer("boss"), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
