package middlewares

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

type mapStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mapStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), val...)
	return nil
}

func (m *mapStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mapStorage) Reset() error { m.data = map[string][]byte{}; return nil }
func (m *mapStorage) Close() error { return nil }

func TestLimitersShareStorageWithoutSharingCounters(t *testing.T) {
	store := &mapStorage{data: map[string][]byte{}}
	UseLimiterStorage(store)
	t.Cleanup(func() { UseLimiterStorage(nil) })

	app := fiber.New()
	app.Use(GlobalRateLimiter())
	app.Post("/api/auth/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/public/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/api/webhooks/stripe", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	do := func(method, path string) int {
		resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 5; i++ {
		if code := do("POST", "/api/auth/login"); code != fiber.StatusOK {
			t.Fatalf("login attempt %d = %d", i+1, code)
		}
	}
	if code := do("POST", "/api/auth/login"); code != fiber.StatusTooManyRequests {
		t.Fatalf("sixth login = %d", code)
	}
	if code := do("GET", "/api/public/ping"); code != fiber.StatusOK {
		t.Fatalf("other route after login lockout = %d", code)
	}

	var global, login bool
	for k := range store.data {
		global = global || strings.HasPrefix(k, "global:")
		login = login || strings.HasPrefix(k, "login:")
	}
	if !global || !login {
		t.Fatalf("storage keys = %v", store.data)
	}
}

func TestGlobalLimiterSkipsWebhooks(t *testing.T) {
	app := fiber.New()
	app.Use(GlobalRateLimiter())
	app.Post("/api/webhooks/stripe", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 120; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/webhooks/stripe", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("webhook %d = %d", i+1, resp.StatusCode)
		}
	}
}
