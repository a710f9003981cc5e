package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/config"
	"github.com/sefazor/menutranslator-backend/internal/controller"
	"github.com/sefazor/menutranslator-backend/internal/middleware"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"github.com/sefazor/menutranslator-backend/pkg/database"
	jwtPkg "github.com/sefazor/menutranslator-backend/pkg/jwt"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type echoTranslator struct{}

func (echoTranslator) Translate(_ context.Context, text, _, to string) (string, error) {
	return fmt.Sprintf("[%s] %s", to, text), nil
}

type stubProvider struct {
	status payment.SessionStatus
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	return &payment.Session{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test", Status: payment.SessionUnpaid}, nil
}

func (p *stubProvider) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	return &payment.Session{ID: id, Status: p.status}, nil
}

type rejectingVerifier struct{}

func (rejectingVerifier) ConstructEvent([]byte, string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("signature mismatch")
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	tokens   *jwtPkg.Manager
	provider *stubProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db))

	log := zap.NewNop()
	policy := config.CreditsConfig{
		DefaultAllotment:   2,
		DefaultTier:        models.TierFree,
		CreditsPerLanguage: 1,
		ChargePolicy:       config.ChargePolicySuccess,
	}

	accounts := repository.NewCreditAccountRepository(db)
	intents := repository.NewPaymentIntentRepository(db)
	users := repository.NewUserRepository(db)
	packages := repository.NewCreditPackageRepository(db)
	credits := service.NewCreditService(accounts, policy, nil, log)
	translations := service.NewTranslationService(credits, repository.NewTranslationRepository(db), repository.NewMenuRepository(db),
		echoTranslator{}, service.TranslationOptions{Timeout: 5 * time.Second}, nil, log)

	provider := &stubProvider{status: payment.SessionPaid}
	checkout := service.NewCheckoutService(intents, packages, users, provider, nil, "brl", nil, log)
	settlement := service.NewSettlementService(db, intents, credits, users, provider, nil, nil, log)
	paymentController := controller.NewPaymentController(checkout, settlement, service.NewPackageService(packages))

	tokens := jwtPkg.NewManager("test-secret", "test", time.Hour)
	validator := utils.NewValidator()

	translationHandler := NewTranslationHandler(translations, log)
	paymentHandler := NewPaymentHandler(paymentController, rejectingVerifier{}, validator, log)
	creditHandler := NewCreditHandler(credits, log)

	app := fiber.New()
	app.Post("/api/payments/webhook", paymentHandler.HandleStripeWebhook)
	api := app.Group("/api", middleware.AuthMiddleware(tokens, log))
	api.Post("/translate", translationHandler.Translate)
	api.Get("/credits", creditHandler.GetCredits)
	api.Post("/checkout", paymentHandler.CreateCheckoutSession)
	api.Post("/verify-payment", paymentHandler.VerifyPayment)

	return &testServer{app: app, db: db, tokens: tokens, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := s.tokens.GenerateToken(fmt.Sprintf("user%d@example.com", userID), userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/credits", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unauthenticated", body["code"])
}

func TestTranslateEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/translate", 1, models.TranslateRequest{
		Text:         "Feijoada",
		FromLanguage: "pt",
		ToLanguages:  []string{"en", "es"},
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["credits_charged"])
	assert.Equal(t, float64(0), data["credits_available"])
	translations := data["translations"].(map[string]interface{})
	assert.Equal(t, "[en] Feijoada", translations["en"])

	status, body = s.do(t, http.MethodPost, "/api/translate", 1, models.TranslateRequest{
		Text:         "Feijoada",
		FromLanguage: "pt",
		ToLanguages:  []string{"fr"},
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "insufficient_credits", body["code"])
	shortfall := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), shortfall["required"])
	assert.Equal(t, float64(0), shortfall["available"])
}

func TestTranslateEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/translate", 1, models.TranslateRequest{Text: "  ", ToLanguages: []string{"en"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "empty_input", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/translate", 1, models.TranslateRequest{Text: "Pastel"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "no_target_languages", body["code"])
}

func TestCheckoutAndVerifyEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/checkout", 1, models.CreateCheckoutRequest{Credits: 5, Price: 790, ProductName: "5 credits"})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "cs_test", data["sessionId"])
	assert.Equal(t, "https://checkout.stripe.test/cs_test", data["checkoutUrl"])

	status, body = s.do(t, http.MethodPost, "/api/verify-payment", 2, models.VerifyPaymentRequest{SessionID: "cs_test"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/verify-payment", 1, models.VerifyPaymentRequest{SessionID: "cs_test"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "completed", body["status"])
	credits := body["credits"].(map[string]interface{})
	assert.Equal(t, float64(5), credits["added"])
	assert.Equal(t, float64(7), credits["total"])

	status, body = s.do(t, http.MethodPost, "/api/verify-payment", 1, models.VerifyPaymentRequest{SessionID: "cs_test"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "already_processed", body["status"])

	status, _ = s.do(t, http.MethodPost, "/api/verify-payment", 1, models.VerifyPaymentRequest{SessionID: "cs_unknown"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/verify-payment", 1, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCheckoutEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/checkout", 1, models.CreateCheckoutRequest{Credits: 0, Price: 790, ProductName: "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body["code"])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/payments/webhook", 0, map[string]string{"type": "checkout.session.completed"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
		{service.ErrNoTargetLanguages, http.StatusBadRequest, "no_target_languages"},
		{fmt.Errorf("%w: bad", service.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{&service.InsufficientCreditsError{Required: 3, Available: 1}, http.StatusPaymentRequired, "insufficient_credits"},
		{fmt.Errorf("%w: %w", service.ErrLedgerWriteConflict, &service.InsufficientCreditsError{Required: 3}), http.StatusPaymentRequired, "insufficient_credits"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: menu", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{fmt.Errorf("%w: translate: %w", service.ErrProvider, context.DeadlineExceeded), http.StatusBadGateway, "provider_error"},
		{errors.New("disk full"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return writeError(c, zap.NewNop(), tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body models.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}
