package model

import (
	"time"

	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */
/* Payment-type tags. Only Paysafe-tokenized methods can be
   charged by this service; the others are legacy rails kept
   for their transaction history. */

const (
	PaymentTypePaysafe     = "Paysafe"
	PaymentTypeESelectPlus = "eSelect Plus"
	PaymentTypeCardEaseXML = "CardEaseXML"
	PaymentTypeCheques     = "Cheques"
)

/* ===================== Model ===================== */

type PaymentMethod struct {
	PaymentMethodID           int64  `gorm:"column:payment_method_id;primaryKey;autoIncrement" json:"payment_method_id"`
	PaymentMethodEnrollmentID int64  `gorm:"column:payment_method_enrollment_id;not null;index" json:"payment_method_enrollment_id"`
	PaymentMethodType         string `gorm:"column:payment_method_type;type:varchar(32);not null" json:"payment_method_type"`

	// first 6 + last 4 visible, the rest masked
	PaymentMethodPan         string `gorm:"column:payment_method_pan;type:varchar(32);not null" json:"payment_method_pan"`
	PaymentMethodExpiryMonth int    `gorm:"column:payment_method_expiry_month;not null" json:"payment_method_expiry_month"`
	PaymentMethodExpiryYear  int    `gorm:"column:payment_method_expiry_year;not null" json:"payment_method_expiry_year"`

	// gateway-side identifiers; never expose the token in responses
	PaymentMethodProfileID    *string `gorm:"column:payment_method_profile_id;type:varchar(64)" json:"-"`
	PaymentMethodCardID       *string `gorm:"column:payment_method_card_id;type:varchar(64)" json:"-"`
	PaymentMethodPaymentToken *string `gorm:"column:payment_method_payment_token;type:varchar(64)" json:"-"`

	// merchant region the token was vaulted under (CA/US/GB)
	PaymentMethodCompany string `gorm:"column:payment_method_company;type:char(2)" json:"payment_method_company"`

	PaymentMethodPrimary          bool `gorm:"column:payment_method_primary;not null;default:false" json:"payment_method_primary"`
	PaymentMethodTransactionCount int  `gorm:"column:payment_method_transaction_count;not null;default:0" json:"payment_method_transaction_count"`
	PaymentMethodNotified         int  `gorm:"column:payment_method_notified;not null;default:0" json:"-"`

	CreatedAt time.Time      `gorm:"column:payment_method_created_at;autoCreateTime" json:"payment_method_created_at"`
	UpdatedAt time.Time      `gorm:"column:payment_method_updated_at;autoUpdateTime" json:"payment_method_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_method_deleted_at;index" json:"-"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

// Tokenized reports whether the method can be charged through the gateway.
func (p *PaymentMethod) Tokenized() bool {
	return p.PaymentMethodType == PaymentTypePaysafe && p.PaymentMethodPaymentToken != nil
}
