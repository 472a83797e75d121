package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

/* ===================== Enums (string) ===================== */

const (
	TransactionTypeCharge = "charge"

	TransactionDescriptionStudentInitiated = "student-initiated"
)

/* ===================== Model ===================== */

// Transaction is the immutable record of one charge attempt. Rows are
// inserted in the same local transaction as the payment-method counter
// bump and are never updated or deleted afterwards.
type Transaction struct {
	TransactionID              int64 `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transaction_id"`
	TransactionEnrollmentID    int64 `gorm:"column:transaction_enrollment_id;not null;index" json:"transaction_enrollment_id"`
	TransactionPaymentMethodID int64 `gorm:"column:transaction_payment_method_id;not null" json:"transaction_payment_method_id"`

	// settled amount: zero unless the gateway reported COMPLETED
	TransactionAmount decimal.Decimal `gorm:"column:transaction_amount;type:numeric(10,2);not null" json:"transaction_amount"`
	// requested amount, recorded on every attempt for the audit trail
	TransactionAttemptedAmount decimal.Decimal `gorm:"column:transaction_attempted_amount;type:numeric(10,2);not null" json:"transaction_attempted_amount"`

	// merchant reference sent to the gateway
	TransactionOrderID string `gorm:"column:transaction_order_id;type:varchar(40);not null" json:"transaction_order_id"`

	TransactionResponseCode      *int    `gorm:"column:transaction_response_code" json:"transaction_response_code,omitempty"`
	TransactionAuthorizationCode *string `gorm:"column:transaction_authorization_code;type:varchar(32)" json:"transaction_authorization_code,omitempty"`
	TransactionReferenceNumber   *string `gorm:"column:transaction_reference_number;type:varchar(64)" json:"transaction_reference_number,omitempty"`
	TransactionResponse          *string `gorm:"column:transaction_response;type:varchar(256)" json:"transaction_response,omitempty"`

	TransactionType        string `gorm:"column:transaction_type;type:varchar(16);not null" json:"transaction_type"`
	TransactionDescription string `gorm:"column:transaction_description;type:varchar(64)" json:"transaction_description"`
	TransactionExtraCharge bool   `gorm:"column:transaction_extra_charge;not null;default:false" json:"transaction_extra_charge"`

	// raw gateway result, kept for reconciliation
	TransactionGatewayPayload datatypes.JSON `gorm:"column:transaction_gateway_payload;type:jsonb" json:"-"`

	TransactionDate time.Time `gorm:"column:transaction_date;not null" json:"transaction_date"`
	CreatedAt       time.Time `gorm:"column:transaction_created_at;autoCreateTime" json:"transaction_created_at"`
}

func (Transaction) TableName() string { return "transactions" }
