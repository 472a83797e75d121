package configs

import (
	"log"
)

/* =========================================================
   Paysafe merchant credentials

   One API key/secret pair per merchant region, plus one
   account number per supported currency. Loaded once at
   startup; a missing variable for a configured region is
   fatal so a broken deploy never takes live charges.
========================================================= */

const (
	MerchantRegionCA = "CA"
	MerchantRegionUS = "US"
	MerchantRegionGB = "GB"
)

type RegionCredentials struct {
	APIKey    string
	APISecret string
	// account number per ISO currency code
	Accounts map[string]string
}

type PaysafeConfig struct {
	// "LIVE" or "TEST"
	Environment string
	Regions     map[string]RegionCredentials
}

func LoadPaysafeConfig() *PaysafeConfig {
	env := GetEnv("PAYSAFE_ENVIRONMENT")
	if env != "LIVE" && env != "TEST" {
		log.Fatalf("[CONFIG] PAYSAFE_ENVIRONMENT must be LIVE or TEST, got %q", env)
	}

	cfg := &PaysafeConfig{
		Environment: env,
		Regions: map[string]RegionCredentials{
			MerchantRegionCA: {
				APIKey:    mustEnv("CA_PAYSAFE_API_KEY"),
				APISecret: mustEnv("CA_PAYSAFE_API_PASSWORD"),
				Accounts: map[string]string{
					"CAD": mustEnv("CA_PAYSAFE_ACCOUNT_NUMBER_CAD"),
					"USD": mustEnv("CA_PAYSAFE_ACCOUNT_NUMBER_USD"),
					"GBP": mustEnv("CA_PAYSAFE_ACCOUNT_NUMBER_GBP"),
					"AUD": mustEnv("CA_PAYSAFE_ACCOUNT_NUMBER_AUD"),
					"NZD": mustEnv("CA_PAYSAFE_ACCOUNT_NUMBER_NZD"),
				},
			},
			MerchantRegionUS: {
				APIKey:    mustEnv("US_PAYSAFE_API_KEY"),
				APISecret: mustEnv("US_PAYSAFE_API_PASSWORD"),
				Accounts: map[string]string{
					"USD": mustEnv("US_PAYSAFE_ACCOUNT_NUMBER_USD"),
				},
			},
			MerchantRegionGB: {
				APIKey:    mustEnv("GB_PAYSAFE_API_KEY"),
				APISecret: mustEnv("GB_PAYSAFE_API_PASSWORD"),
				Accounts: map[string]string{
					"GBP": mustEnv("GB_PAYSAFE_ACCOUNT_NUMBER_GBP"),
					"AUD": mustEnv("GB_PAYSAFE_ACCOUNT_NUMBER_AUD"),
					"NZD": mustEnv("GB_PAYSAFE_ACCOUNT_NUMBER_NZD"),
				},
			},
		},
	}

	log.Println("[CONFIG] Paysafe credentials loaded for regions CA, US, GB")
	return cfg
}

func mustEnv(key string) string {
	v := GetEnv(key)
	if v == "" {
		log.Fatalf("[CONFIG] %s is undefined", key)
	}
	return v
}
