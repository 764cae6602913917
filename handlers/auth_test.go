package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	newHandlerTestDB(t)

	app := fiber.New()
	app.Post("/api/auth/guest", GuestLogin)
	app.Post("/api/auth/register", Register)
	app.Post("/api/auth/login", Login)
	return app
}

func TestGuestLogin(t *testing.T) {
	app := setupAuthApp(t)

	status, payload := doJSON(t, app, "POST", "/api/auth/guest", "", map[string]interface{}{})
	if status != 200 {
		t.Fatalf("guest login: status = %d, body = %v", status, payload)
	}
	if token, _ := payload["token"].(string); token == "" {
		t.Error("guest login should return a token")
	}
	user, ok := payload["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("guest login response missing user: %v", payload)
	}
	if isGuest, _ := user["is_guest"].(bool); !isGuest {
		t.Error("guest account should be marked is_guest")
	}
}

func TestGuestLoginNameTaken(t *testing.T) {
	app := setupAuthApp(t)

	status, payload := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	if status != 201 {
		t.Fatalf("register: status = %d, body = %v", status, payload)
	}

	// A guest name colliding with an existing username is a conflict,
	// not an internal error.
	status, payload = doJSON(t, app, "POST", "/api/auth/guest", "", map[string]interface{}{
		"guest_name": "alice",
	})
	if status != 409 {
		t.Errorf("colliding guest name: status = %d, want 409 (body %v)", status, payload)
	}

	// A fresh name still works.
	status, _ = doJSON(t, app, "POST", "/api/auth/guest", "", map[string]interface{}{
		"guest_name": "visiting-bob",
	})
	if status != 200 {
		t.Errorf("fresh guest name: status = %d, want 200", status)
	}
}
