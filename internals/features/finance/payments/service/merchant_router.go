package service

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"studentbilling_backend/internals/configs"
	"studentbilling_backend/internals/features/finance/payments/gateway"
)

/* =========================================================
   Merchant account routing

   (region, currency) → credentials + account number.
   Deterministic and side-effect-free; the credential table
   is loaded once at startup and never mutated.
========================================================= */

type MerchantRouter struct {
	cfg *configs.PaysafeConfig
}

func NewMerchantRouter(cfg *configs.PaysafeConfig) *MerchantRouter {
	return &MerchantRouter{cfg: cfg}
}

// RegionForCurrency derives the merchant region used when an enrollment
// has no region pinned yet.
func RegionForCurrency(currencyCode string) string {
	switch currencyCode {
	case "GBP", "AUD", "NZD":
		return configs.MerchantRegionGB
	case "USD":
		return configs.MerchantRegionUS
	default:
		return configs.MerchantRegionCA
	}
}

// Resolve picks the gateway account for a (region, currency) pair. An
// empty region is derived from the currency first.
func (r *MerchantRouter) Resolve(region, currencyCode string) (gateway.Account, error) {
	if region == "" {
		region = RegionForCurrency(currencyCode)
	}

	creds, ok := r.cfg.Regions[region]
	if !ok {
		return gateway.Account{}, fiber.NewError(fiber.StatusConflict, "invalid merchant region")
	}

	accountNumber, ok := creds.Accounts[currencyCode]
	if !ok {
		return gateway.Account{}, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("unsupported currency for Paysafe %s", region))
	}

	return gateway.Account{
		APIKey:        creds.APIKey,
		APISecret:     creds.APISecret,
		AccountNumber: accountNumber,
	}, nil
}
