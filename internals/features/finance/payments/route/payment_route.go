package route

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/finance/payments/controller"
	"schoolhub_backend/internals/features/finance/payments/service"
)

var (
	gatewayOnce sync.Once
	gateway     service.SnapGateway
)

// snapGateway is built once from MIDTRANS_SERVER_KEY / MIDTRANS_USE_PROD;
// nil when no key is set.
func snapGateway() service.SnapGateway {
	gatewayOnce.Do(func() {
		if configs.MidtransServerKey != "" {
			gateway = service.NewSnapGateway(configs.MidtransServerKey, configs.GetEnvBool("MIDTRANS_USE_PROD", false))
		}
	})
	return gateway
}

// SubscriptionAdminRoutes mounts under /api/a/:school_id.
func SubscriptionAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewPaymentController(db, snapGateway(), configs.MidtransServerKey)

	g := r.Group("/school/subscription")
	g.Post("/checkout", ctl.Checkout)
	g.Get("/payments", ctl.List)
}

// SubscriptionPublicRoutes mounts under /api/public. Midtrans calls it unauthenticated.
func SubscriptionPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewPaymentController(db, snapGateway(), configs.MidtransServerKey)
	r.Post("/subscriptions/notification", ctl.Notification)
}
