package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"go.uber.org/zap"
)

type CreditPackageHandler struct {
	packageService *service.PackageService
	log            *zap.Logger
}

func NewCreditPackageHandler(packageService *service.PackageService, log *zap.Logger) *CreditPackageHandler {
	return &CreditPackageHandler{
		packageService: packageService,
		log:            log,
	}
}

func (h *CreditPackageHandler) GetAllPackages(c *fiber.Ctx) error {
	packages, err := h.packageService.GetAllPackages(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(packages, "Packages retrieved successfully"))
}

func (h *CreditPackageHandler) GetPackageByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid package ID")
	}

	pkg, err := h.packageService.GetPackageByID(c.UserContext(), uint(id))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(pkg, "Package retrieved successfully"))
}
