package controller

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"github.com/stripe/stripe-go/v74"
)

type PaymentController struct {
	checkoutService   *service.CheckoutService
	settlementService *service.SettlementService
	packageService    *service.PackageService
}

func NewPaymentController(
	checkoutService *service.CheckoutService,
	settlementService *service.SettlementService,
	packageService *service.PackageService,
) *PaymentController {
	return &PaymentController{
		checkoutService:   checkoutService,
		settlementService: settlementService,
		packageService:    packageService,
	}
}

func (c *PaymentController) CreateCheckoutSession(ctx context.Context, userID uint, req models.CreateCheckoutRequest) (*models.CheckoutSession, error) {
	return c.checkoutService.Initiate(ctx, userID, req)
}

func (c *PaymentController) CreatePackageCheckoutSession(ctx context.Context, userID uint, packageID uint) (*models.CheckoutSession, error) {
	return c.checkoutService.InitiateForPackage(ctx, userID, packageID)
}

func (c *PaymentController) VerifyPayment(ctx context.Context, userID uint, sessionID string) (*models.VerifyPaymentResponse, error) {
	return c.settlementService.VerifyPayment(ctx, userID, sessionID)
}

func (c *PaymentController) HandleStripeWebhook(ctx context.Context, event *stripe.Event) error {
	return c.settlementService.HandleStripeWebhook(ctx, event)
}

func (c *PaymentController) GetCreditPackages(ctx context.Context) ([]models.CreditPackage, error) {
	return c.packageService.GetAllPackages(ctx)
}

func (c *PaymentController) GetUserPurchaseHistory(ctx context.Context, userID uint) ([]models.PaymentIntent, error) {
	return c.settlementService.History(ctx, userID)
}
