package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"

	"openup/internal/models"
	"openup/internal/token"
)

// AuthMiddleware authenticates requests, either by session cookie for
// browser pages or by bearer token for the API.
type AuthMiddleware struct {
	store   *session.Store
	secret  string
	profile func(c fiber.Ctx, id uuid.UUID) (*models.Profile, error)
}

// NewAuthMiddleware creates a new auth middleware instance. profile
// loads the authenticated user's profile; tests substitute a fake.
func NewAuthMiddleware(store *session.Store, secret string, profile func(c fiber.Ctx, id uuid.UUID) (*models.Profile, error)) *AuthMiddleware {
	return &AuthMiddleware{store: store, secret: secret, profile: profile}
}

// RequireSession ensures the user has a browser session, redirecting
// to /login if not.
func (m *AuthMiddleware) RequireSession(c fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return c.Redirect().To("/login")
	}

	userID := sess.Get("user_id")
	if userID == nil {
		return c.Redirect().To("/login")
	}

	id, err := uuid.Parse(userID.(string))
	if err != nil {
		sess.Destroy()
		return c.Redirect().To("/login")
	}

	profile, err := m.profile(c, id)
	if err != nil {
		sess.Destroy()
		return c.Redirect().To("/login")
	}

	c.Locals("user", profile)
	return c.Next()
}

// RequireBearer verifies the Authorization bearer token and loads the
// caller's profile into locals. API routes use this.
func (m *AuthMiddleware) RequireBearer(c fiber.Ctx) error {
	tok := bearerToken(c)
	if tok == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	userID, err := token.Verify(m.secret, tok)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := m.profile(c, userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("user", profile)
	return c.Next()
}

// OptionalBearer loads the caller's profile if a valid token is
// present, but never rejects the request.
func (m *AuthMiddleware) OptionalBearer(c fiber.Ctx) error {
	tok := bearerToken(c)
	if tok == "" {
		return c.Next()
	}

	userID, err := token.Verify(m.secret, tok)
	if err != nil {
		return c.Next()
	}

	if profile, err := m.profile(c, userID); err == nil {
		c.Locals("user", profile)
	}
	return c.Next()
}

func bearerToken(c fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
