package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	PaymentRoutes "schoolhub_backend/internals/features/finance/payments/route"
)

// Midtrans posts notifications without a token.
func FinancePublicRoutes(r fiber.Router, db *gorm.DB) {
	PaymentRoutes.SubscriptionPublicRoutes(r, db)
}

func FinanceAdminRoutes(r fiber.Router, db *gorm.DB) {
	PaymentRoutes.SubscriptionAdminRoutes(r, db)
}
