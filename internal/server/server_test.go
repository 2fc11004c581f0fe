package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"

	"openup/internal/config"
)

func TestDeriveEncryptionKey(t *testing.T) {
	key := deriveEncryptionKey("some-session-secret")

	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		t.Fatalf("key is not valid base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("key length = %d bytes, want 32", len(raw))
	}

	if key != deriveEncryptionKey("some-session-secret") {
		t.Error("derivation is not deterministic")
	}
	if key == deriveEncryptionKey("another-secret") {
		t.Error("different secrets produced the same key")
	}
}

// The encrypted session cookie must survive being replayed by the
// browser on the next request.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-secret-that-is-long-enough"),
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		sess.Set("user_id", "u-123")
		return c.SendString("ok")
	})
	app.Get("/get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		val, _ := sess.Get("user_id").(string)
		return c.SendString(val)
	})

	req, _ := http.NewRequest("POST", "/set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("set request failed: %v", err)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie returned")
	}

	req2, _ := http.NewRequest("GET", "/get", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	body, _ := io.ReadAll(resp2.Body)
	if string(body) != "u-123" {
		t.Errorf("session value = %q, want %q", body, "u-123")
	}
}

// API paths get JSON errors, browser paths get the error page.
func TestErrorHandlerContentNegotiation(t *testing.T) {
	cfg := &config.Config{
		Env:       "test",
		SiteTitle: "OpenUp",
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			if strings.HasPrefix(c.Path(), "/api/") || strings.Contains(c.Get("Accept"), "application/json") {
				return c.Status(code).JSON(fiber.Map{"error": message})
			}
			return c.Status(code).SendString(cfg.SiteTitle + ": " + message)
		},
	})
	app.Get("/api/boom", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nothing here")
	})

	req, _ := http.NewRequest("GET", "/api/boom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"error":"nothing here"`) {
		t.Errorf("body = %s, want JSON error", body)
	}
}
