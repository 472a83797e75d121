package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Ledger arithmetic

   All money math goes through shopspring/decimal; binary
   floating point would drift at the cent level over an
   enrollment's lifetime of installments.
========================================================= */

// Owing computes cost − discount − paid, rounded to 2 decimal places
// (round half away from zero). A negative result means over-payment and
// is returned as-is; policy on it belongs to the caller.
func Owing(cost, discount, paid decimal.Decimal) decimal.Decimal {
	return cost.Sub(discount).Sub(paid).Round(2)
}

// SumTuitionPaid totals the settled amounts of an enrollment's
// non-extra-charge transactions.
func SumTuitionPaid(ctx context.Context, db *gorm.DB, enrollmentID int64) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("transaction_enrollment_id = ? AND transaction_extra_charge = ?", enrollmentID, false).
		Select("COALESCE(SUM(transaction_amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return decimal.Zero, err
	}
	return paid, nil
}

// EnrollmentOwing loads the enrollment's current balance owing.
func EnrollmentOwing(ctx context.Context, db *gorm.DB, e *model.Enrollment) (decimal.Decimal, error) {
	paid, err := SumTuitionPaid(ctx, db, e.EnrollmentID)
	if err != nil {
		return decimal.Zero, err
	}
	return Owing(e.EnrollmentCost, e.EnrollmentDiscount, paid), nil
}
