package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/controller"
	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/service"
)

// StudentBillingRoutes mounts the enrollment billing endpoints under the
// (already authenticated) router group.
func StudentBillingRoutes(r fiber.Router, db, remote *gorm.DB, router *service.MerchantRouter, dial gateway.Factory) {
	paymentMethods := controller.NewPaymentMethodController(db, remote, router, dial)
	transactions := controller.NewTransactionController(db)
	enrollments := controller.NewEnrollmentController(db)

	enrollment := r.Group("/students/:sId/enrollments/:eId")

	enrollment.Get("/", enrollments.Get)
	enrollment.Get("/transactions", transactions.List)

	enrollment.Get("/paymentMethods", paymentMethods.List)
	enrollment.Post("/paymentMethods", paymentMethods.Create)
	enrollment.Get("/paymentMethods/:pId", paymentMethods.Get)
	enrollment.Post("/paymentMethods/:pId/setPrimary", paymentMethods.SetPrimary)
	enrollment.Post("/paymentMethods/:pId/charge", paymentMethods.Charge)
}
