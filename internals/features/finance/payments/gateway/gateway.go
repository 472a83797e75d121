package gateway

import (
	"context"
	"encoding/json"
	"time"
)

/* =========================================================
   Gateway boundary

   Every operation returns either a success payload or a
   business Error (code + message) inside its result; the Go
   error return is reserved for transport failures. Declines
   and validation failures from the gateway are data, not
   errors, so the settlement flow can record them.
========================================================= */

// Status reported on verifications and authorizations.
const StatusCompleted = "COMPLETED"

// Error is a business failure reported by the gateway.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Account holds the merchant credentials one client instance acts under.
type Account struct {
	APIKey        string
	APISecret     string
	AccountNumber string
}

// Factory builds a client bound to one merchant account. The settlement
// and vault services resolve the account per request (region + currency)
// and dial a fresh client, the way the upstream processor's SDK works.
type Factory func(acct Account) Client

type Client interface {
	CreateProfile(ctx context.Context, req CreateProfileRequest) (*CreateProfileResult, error)
	CreateAddress(ctx context.Context, req CreateAddressRequest) (*CreateAddressResult, error)
	CreateCard(ctx context.Context, req CreateCardRequest) (*CreateCardResult, error)
	UpdateCard(ctx context.Context, req UpdateCardRequest) (*UpdateCardResult, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	AuthorizeAndSettle(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
}

/* ===================== Customer vault ===================== */

type CreateProfileRequest struct {
	MerchantCustomerID string
	Locale             string
	FirstName          string
	LastName           string
	Gender             string // "M" or "F"
	Email              string
	Phone              string // optional
}

type CreateProfileResult struct {
	ID    string
	Error *Error
}

type CreateAddressRequest struct {
	ProfileID       string
	Street          string
	Street2         string // optional
	City            string
	State           string // optional, only for countries with states/provinces
	Zip             string
	Country         string
	DefaultShipping bool
}

type CreateAddressResult struct {
	ID    string
	Error *Error
}

type CreateCardRequest struct {
	ProfileID   string
	CardNum     string
	ExpiryMonth int
	ExpiryYear  int
}

type CreateCardResult struct {
	ID           string
	PaymentToken string
	CardBin      string
	LastDigits   string
	ExpiryMonth  int
	ExpiryYear   int
	Error        *Error
}

type UpdateCardRequest struct {
	ProfileID        string
	CardID           string
	BillingAddressID string
	ExpiryMonth      int
	ExpiryYear       int
}

type UpdateCardResult struct {
	Error *Error
}

/* ===================== Card payments ===================== */

type VerifyRequest struct {
	MerchantRefNum string
	PaymentToken   string
}

type VerifyResult struct {
	ID     string
	Status string
	Error  *Error
}

type AuthorizeRequest struct {
	MerchantRefNum string
	PaymentToken   string
	// amount in minor units (cents/pence)
	AmountMinor    int64
	SettleWithAuth bool
	Recurring      string // "RECURRING" on stored-token charges
}

type AuthorizeResult struct {
	ID           string
	Status       string
	AuthCode     string
	SettlementID string
	TxnTime      time.Time
	Error        *Error
	// raw response body, persisted with the transaction row
	Raw json.RawMessage
}
