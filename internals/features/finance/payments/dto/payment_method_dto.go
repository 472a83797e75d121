package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"studentbilling_backend/internals/features/finance/payments/model"
)

/* ===================== Requests ===================== */

type CreatePaymentMethodRequest struct {
	PaymentType string `json:"payment_type" validate:"required"`
	CSC         string `json:"csc"`
	Pan         string `json:"pan"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
}

// ChargeRequest accepts amount as a JSON number or string; decimal's
// unmarshaller handles both without going through a float64.
type ChargeRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

/* ===================== Responses ===================== */

type PaymentMethodResponse struct {
	ID               int64  `json:"id"`
	Primary          bool   `json:"primary"`
	PaymentType      string `json:"payment_type"`
	Pan              string `json:"pan"`
	ExpiryMonth      int    `json:"expiry_month"`
	ExpiryYear       int    `json:"expiry_year"`
	TransactionCount int    `json:"transaction_count"`
}

func NewPaymentMethodResponse(p *model.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:               p.PaymentMethodID,
		Primary:          p.PaymentMethodPrimary,
		PaymentType:      p.PaymentMethodType,
		Pan:              p.PaymentMethodPan,
		ExpiryMonth:      p.PaymentMethodExpiryMonth,
		ExpiryYear:       p.PaymentMethodExpiryYear,
		TransactionCount: p.PaymentMethodTransactionCount,
	}
}

type TransactionResponse struct {
	ID                int64                  `json:"id"`
	TransactionDate   time.Time              `json:"transaction_date"`
	Amount            decimal.Decimal        `json:"amount"`
	AttemptedAmount   decimal.Decimal        `json:"attempted_amount"`
	PaymentMethodID   int64                  `json:"payment_method_id"`
	OrderID           string                 `json:"order_id"`
	ResponseCode      *int                   `json:"response_code"`
	AuthorizationCode *string                `json:"authorization_code"`
	ReferenceNumber   *string                `json:"reference_number"`
	Response          *string                `json:"response"`
	Description       string                 `json:"description"`
	ExtraCharge       bool                   `json:"extra_charge"`
	PaymentMethod     *PaymentMethodResponse `json:"payment_method,omitempty"`
}

func NewTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.TransactionID,
		TransactionDate:   t.TransactionDate,
		Amount:            t.TransactionAmount,
		AttemptedAmount:   t.TransactionAttemptedAmount,
		PaymentMethodID:   t.TransactionPaymentMethodID,
		OrderID:           t.TransactionOrderID,
		ResponseCode:      t.TransactionResponseCode,
		AuthorizationCode: t.TransactionAuthorizationCode,
		ReferenceNumber:   t.TransactionReferenceNumber,
		Response:          t.TransactionResponse,
		Description:       t.TransactionDescription,
		ExtraCharge:       t.TransactionExtraCharge,
	}
}

type EnrollmentResponse struct {
	ID               int64            `json:"id"`
	CourseCode       string           `json:"course_code"`
	CourseName       string           `json:"course_name"`
	CurrencyCode     string           `json:"currency_code"`
	Cost             decimal.Decimal  `json:"cost"`
	Discount         decimal.Decimal  `json:"discount"`
	Installment      decimal.Decimal  `json:"installment"`
	PaymentFrequency string           `json:"payment_frequency"`
	Status           *string          `json:"status"`
	StatusDate       *time.Time       `json:"status_date"`
	AmountPaid       decimal.Decimal  `json:"amount_paid"`
	RemainingBalance decimal.Decimal  `json:"remaining_balance"`
}
