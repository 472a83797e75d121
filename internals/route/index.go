package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/configs"
	paymentsRoute "studentbilling_backend/internals/features/finance/payments/route"
	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/service"
	authMiddleware "studentbilling_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db, remote *gorm.DB, paysafeCfg *configs.PaysafeConfig) {
	startTime = time.Now()

	BaseRoutes(app)

	router := service.NewMerchantRouter(paysafeCfg)
	dial := gateway.NewPaysafeFactory(paysafeCfg.Environment)

	log.Println("[INFO] Setting up student billing routes...")
	api := app.Group("/api/v2", authMiddleware.AuthMiddleware())
	paymentsRoute.StudentBillingRoutes(api, db, remote, router, dial)
}
