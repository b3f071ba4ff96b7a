package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type PaymentController struct {
	DB  *gorm.DB
	Svc *service.SubscriptionService
}

// NewPaymentController takes the gateway from the caller so tests can stub Snap.
func NewPaymentController(db *gorm.DB, gateway service.SnapGateway, serverKey string) *PaymentController {
	return &PaymentController{DB: db, Svc: service.NewSubscriptionService(db, gateway, serverKey)}
}

// POST /api/a/:school_id/school/subscription/checkout
func (h *PaymentController) Checkout(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	p, err := h.Svc.Checkout(c.UserContext(), schoolID, &userID)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return helper.JsonCreated(c, "Checkout created", dto.FromModel(p))
}

// GET /api/a/:school_id/school/subscription/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetScopedSchoolID(c)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.Payments(c.UserContext(), schoolID, p)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.FromModelList(rows), &pg)
}

// POST /api/public/subscriptions/notification
func (h *PaymentController) Notification(c *fiber.Ctx) error {
	var n dto.MidtransNotification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	// fasthttp reuses the body buffer after the handler returns
	raw := append([]byte(nil), c.Body()...)
	out, err := h.Svc.HandleNotification(c.UserContext(), n, raw)
	if err != nil {
		return helper.ToJSONErr(c, err)
	}
	return c.JSON(out)
}
