package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/controller"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
)

// EventVerifier checks a webhook signature and decodes the event.
type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type PaymentHandler struct {
	paymentController *controller.PaymentController
	events            EventVerifier
	validator         *utils.Validator
	log               *zap.Logger
}

func NewPaymentHandler(paymentController *controller.PaymentController, events EventVerifier, validator *utils.Validator, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentController: paymentController,
		events:            events,
		validator:         validator,
		log:               log.Named("payment"),
	}
}

// CreateCheckoutSession opens a checkout for a free-form credit amount.
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req models.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	session, err := h.paymentController.CreateCheckoutSession(c.UserContext(), userID(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *PaymentHandler) CreatePackageCheckoutSession(c *fiber.Ctx) error {
	packageID, err := strconv.ParseUint(c.Params("packageId"), 10, 32)
	if err != nil || packageID == 0 {
		return badRequest(c, "Invalid package ID")
	}

	session, err := h.paymentController.CreatePackageCheckoutSession(c.UserContext(), userID(c), uint(packageID))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(session, ""))
}

// VerifyPayment answers with the flat verification body rather than the envelope.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var req models.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	resp, err := h.paymentController.VerifyPayment(c.UserContext(), userID(c), req.SessionID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(resp)
}

func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := h.events.ConstructEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn("rejected webhook", zap.Error(err), zap.Bool("security", true))
		return badRequest(c, "Invalid webhook signature")
	}

	if err := h.paymentController.HandleStripeWebhook(c.UserContext(), &event); err != nil {
		h.log.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		// Non-2xx makes Stripe retry delivery.
		return c.Status(fiber.StatusInternalServerError).JSON(models.CodedErrorResponse("internal", "Webhook processing failed"))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) GetCreditPackages(c *fiber.Ctx) error {
	packages, err := h.paymentController.GetCreditPackages(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(packages, ""))
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	purchases, err := h.paymentController.GetUserPurchaseHistory(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(purchases, ""))
}
