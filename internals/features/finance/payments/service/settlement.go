package service

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Settlement orchestrator

   Validated → GatewayCalled → Recorded → StatusPropagated.
   Policy checks all happen before the gateway is touched; a
   gateway decline is still recorded (zero settled amount)
   for the audit trail; status propagation after recording
   is best-effort and never fails the request.
========================================================= */

// MaxCharge is the per-attempt ceiling, in the enrollment's currency.
var MaxCharge = decimal.NewFromInt(1800)

type Settlement struct {
	DB     *gorm.DB
	Remote *gorm.DB
	Router *MerchantRouter
	Dial   gateway.Factory
}

// Charge validates, authorizes-and-settles, records, and propagates one
// charge attempt against an enrollment's payment method.
func (s *Settlement) Charge(ctx context.Context, studentID, enrollmentID, paymentMethodID int64, amountInput *decimal.Decimal) error {
	// ---- Validated ----

	if amountInput == nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount not specified")
	}
	amount := amountInput.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}
	if amount.GreaterThan(MaxCharge) {
		return fiber.NewError(fiber.StatusBadRequest, "amount is limited to "+MaxCharge.String())
	}

	if _, err := FindStudent(ctx, s.DB, studentID); err != nil {
		return err
	}
	enrollment, err := FindEnrollment(ctx, s.DB, studentID, enrollmentID)
	if err != nil {
		return err
	}
	method, err := FindPaymentMethod(ctx, s.DB, enrollmentID, paymentMethodID)
	if err != nil {
		return err
	}

	if enrollment.EnrollmentStatus != nil {
		switch *enrollment.EnrollmentStatus {
		case model.EnrollmentStatusTransferred:
			return fiber.NewError(fiber.StatusConflict, "student has transferred")
		case model.EnrollmentStatusWithdrawn:
			return fiber.NewError(fiber.StatusConflict, "course is withdrawn")
		}
	}

	if !method.Tokenized() {
		return fiber.NewError(fiber.StatusConflict, "unsupported payment method")
	}

	owing, err := EnrollmentOwing(ctx, s.DB, enrollment)
	if err != nil {
		return err
	}
	if amount.GreaterThan(owing) {
		return fiber.NewError(fiber.StatusBadRequest, "amount is higher than amount owing")
	}

	currency, err := FindCurrency(ctx, s.DB, enrollment.EnrollmentCurrencyID)
	if err != nil {
		return err
	}
	course, err := FindCourse(ctx, s.DB, enrollment.EnrollmentCourseID)
	if err != nil {
		return err
	}

	acct, err := s.Router.Resolve(method.PaymentMethodCompany, currency.CurrencyCode)
	if err != nil {
		return err
	}

	// ---- GatewayCalled ----

	merchantRef := NewMerchantRef(merchantRefTag)
	result, err := s.Dial(acct).AuthorizeAndSettle(ctx, gateway.AuthorizeRequest{
		MerchantRefNum: merchantRef,
		PaymentToken:   *method.PaymentMethodPaymentToken,
		AmountMinor:    amount.Shift(2).IntPart(),
		SettleWithAuth: true,
		Recurring:      "RECURRING",
	})
	if err != nil {
		// transport failure: nothing was recorded, the gateway state is unknown
		return err
	}
	completed := result.Status == gateway.StatusCompleted
	if !completed && result.Error != nil {
		log.Printf("[SETTLEMENT] authorization declined student=%d enrollment=%d amount=%s code=%s: %s",
			studentID, enrollmentID, amount.String(), result.Error.Code, result.Error.Message)
	}

	// ---- Recorded ----

	settled := decimal.Zero
	if completed {
		settled = amount
	}
	txn := model.Transaction{
		TransactionEnrollmentID:    enrollmentID,
		TransactionPaymentMethodID: paymentMethodID,
		TransactionAmount:          settled,
		TransactionAttemptedAmount: amount,
		TransactionOrderID:         merchantRef,
		TransactionType:            model.TransactionTypeCharge,
		TransactionDescription:     model.TransactionDescriptionStudentInitiated,
		TransactionExtraCharge:     false,
		TransactionGatewayPayload:  []byte(result.Raw),
		TransactionDate:            result.TxnTime,
	}
	if result.Error != nil {
		if code, convErr := strconv.Atoi(result.Error.Code); convErr == nil {
			txn.TransactionResponseCode = &code
		}
		msg := result.Error.Message
		txn.TransactionResponse = &msg
	}
	if result.AuthCode != "" {
		auth := result.AuthCode
		txn.TransactionAuthorizationCode = &auth
	}
	if result.SettlementID != "" {
		ref := result.SettlementID
		txn.TransactionReferenceNumber = &ref
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Model(&model.PaymentMethod{}).
			Where("payment_method_id = ?", paymentMethodID).
			UpdateColumn("payment_method_transaction_count",
				gorm.Expr("payment_method_transaction_count + 1")).Error
	})
	if err != nil {
		// The charge may already have settled at the gateway; this needs
		// operational reconciliation, never an automatic retry.
		log.Printf("[SETTLEMENT] RECONCILE: could not store transaction student=%d enrollment=%d ref=%s amount=%s completed=%t: %v",
			studentID, enrollmentID, merchantRef, amount.String(), completed, err)
		return err
	}

	if !completed {
		return fiber.NewError(fiber.StatusBadRequest, "payment method failed")
	}

	// ---- StatusPropagated ----

	threshold := decimal.Min(enrollment.EnrollmentInstallment, owing)
	if settled.LessThan(threshold) {
		log.Printf("[SETTLEMENT] student=%d enrollment=%d amount below installment, status untouched", studentID, enrollmentID)
		return nil
	}

	if enrollment.IsOnHold() {
		err := s.DB.WithContext(ctx).Model(&model.Enrollment{}).
			Where("enrollment_id = ?", enrollmentID).
			Updates(map[string]interface{}{
				"enrollment_status":      nil,
				"enrollment_status_date": nil,
			}).Error
		if err != nil {
			log.Printf("[SETTLEMENT] error clearing hold status enrollment=%d: %v", enrollmentID, err)
		}
	}

	ClearRemoteHold(ctx, s.Remote, enrollment.EnrollmentAccountID, course.CoursePrefix)

	return nil
}
