package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricsApp(token string) *fiber.App {
	app := fiber.New()
	app.Get("/metrics", MetricsAuth(token), func(c *fiber.Ctx) error {
		return c.SendString("credits_debited_total 3")
	})
	return app
}

func TestMetricsAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "disabled without token", token: "", header: "Bearer anything", want: http.StatusNotFound},
		{name: "missing header", token: "scrape-secret", want: http.StatusUnauthorized},
		{name: "wrong token", token: "scrape-secret", header: "Bearer guess", want: http.StatusUnauthorized},
		{name: "wrong scheme", token: "scrape-secret", header: "Basic scrape-secret", want: http.StatusUnauthorized},
		{name: "valid token", token: "scrape-secret", header: "Bearer scrape-secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := metricsApp(tt.token).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
