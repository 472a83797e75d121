package service

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentbilling_backend/internals/configs"
)

func TestRegionForCurrency(t *testing.T) {
	cases := map[string]string{
		"GBP": configs.MerchantRegionGB,
		"AUD": configs.MerchantRegionGB,
		"NZD": configs.MerchantRegionGB,
		"USD": configs.MerchantRegionUS,
		"CAD": configs.MerchantRegionCA,
		"EUR": configs.MerchantRegionCA, // anything else falls through to CA
		"":    configs.MerchantRegionCA,
	}
	for currency, want := range cases {
		assert.Equal(t, want, RegionForCurrency(currency), "currency %q", currency)
	}
}

func TestResolve(t *testing.T) {
	r := NewMerchantRouter(testPaysafeConfig())

	t.Run("pinned region wins", func(t *testing.T) {
		acct, err := r.Resolve(configs.MerchantRegionCA, "USD")
		require.NoError(t, err)
		assert.Equal(t, "ca-key", acct.APIKey)
		assert.Equal(t, "ca-secret", acct.APISecret)
		assert.Equal(t, "1002", acct.AccountNumber)
	})

	t.Run("empty region derived from currency", func(t *testing.T) {
		acct, err := r.Resolve("", "GBP")
		require.NoError(t, err)
		assert.Equal(t, "gb-key", acct.APIKey)
		assert.Equal(t, "3001", acct.AccountNumber)

		acct, err = r.Resolve("", "USD")
		require.NoError(t, err)
		assert.Equal(t, "2001", acct.AccountNumber)

		acct, err = r.Resolve("", "CAD")
		require.NoError(t, err)
		assert.Equal(t, "1001", acct.AccountNumber)
	})

	t.Run("unknown region", func(t *testing.T) {
		_, err := r.Resolve("FR", "EUR")
		requireFiberError(t, err, fiber.StatusConflict, "invalid merchant region")
	})

	t.Run("currency not sold in region", func(t *testing.T) {
		_, err := r.Resolve(configs.MerchantRegionUS, "CAD")
		requireFiberError(t, err, fiber.StatusConflict, "unsupported currency for Paysafe US")

		_, err = r.Resolve(configs.MerchantRegionGB, "USD")
		requireFiberError(t, err, fiber.StatusConflict, "unsupported currency for Paysafe GB")
	})
}
