package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/model"
)

func newSettlement(db *gorm.DB, fake *fakeGateway) *Settlement {
	return &Settlement{
		DB:     db,
		Remote: nil,
		Router: NewMerchantRouter(testPaysafeConfig()),
		Dial:   fake.Factory(),
	}
}

func amt(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func countTransactions(t *testing.T, db *gorm.DB, enrollmentID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Transaction{}).
		Where("transaction_enrollment_id = ?", enrollmentID).Count(&n).Error)
	return n
}

func TestChargeAmountValidation(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	cases := []struct {
		name    string
		amount  *decimal.Decimal
		wantMsg string
	}{
		{"missing amount", nil, "amount not specified"},
		{"zero amount", amt("0"), "amount must be positive"},
		{"negative amount", amt("-50"), "amount must be positive"},
		{"rounds to zero", amt("0.004"), "amount must be positive"},
		{"above ceiling", amt("1800.01"), "amount is limited to 1800"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeGateway{}
			s := newSettlement(db, fake)
			err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, tc.amount)
			requireFiberError(t, err, fiber.StatusBadRequest, tc.wantMsg)
			assert.Zero(t, fake.Calls())
			assert.Zero(t, countTransactions(t, db, f.Enrollment.EnrollmentID))
		})
	}
}

func TestChargeEnrollmentStatus(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		wantCode int
		wantMsg  string
	}{
		{"transferred", model.EnrollmentStatusTransferred, fiber.StatusConflict, "student has transferred"},
		{"withdrawn", model.EnrollmentStatusWithdrawn, fiber.StatusConflict, "course is withdrawn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupDB(t)
			f := seedEnrollment(t, db)
			m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)
			require.NoError(t, db.Model(&model.Enrollment{}).
				Where("enrollment_id = ?", f.Enrollment.EnrollmentID).
				Update("enrollment_status", tc.status).Error)

			fake := &fakeGateway{}
			s := newSettlement(db, fake)
			err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100"))
			requireFiberError(t, err, tc.wantCode, tc.wantMsg)
			assert.Zero(t, fake.Calls())
		})
	}
}

func TestChargeUntokenizedMethod(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := model.PaymentMethod{
		PaymentMethodEnrollmentID: f.Enrollment.EnrollmentID,
		PaymentMethodType:         model.PaymentTypeCheques,
		PaymentMethodPan:          "n/a",
	}
	require.NoError(t, db.Create(&m).Error)

	fake := &fakeGateway{}
	s := newSettlement(db, fake)
	err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100"))
	requireFiberError(t, err, fiber.StatusConflict, "unsupported payment method")
	assert.Zero(t, fake.Calls())
}

func TestChargeAboveOwing(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	// 950 already settled on a 1000 enrollment leaves 50 owing
	require.NoError(t, db.Create(&model.Transaction{
		TransactionEnrollmentID:    f.Enrollment.EnrollmentID,
		TransactionPaymentMethodID: m.PaymentMethodID,
		TransactionAmount:          d("950"),
		TransactionAttemptedAmount: d("950"),
		TransactionOrderID:         "20260101000000000_si_12345",
		TransactionType:            model.TransactionTypeCharge,
		TransactionDescription:     model.TransactionDescriptionStudentInitiated,
		TransactionDate:            time.Now(),
	}).Error)

	fake := &fakeGateway{}
	s := newSettlement(db, fake)
	err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("50.01"))
	requireFiberError(t, err, fiber.StatusBadRequest, "amount is higher than amount owing")
	assert.Zero(t, fake.Calls())

	// exactly the balance is allowed
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("50")))
}

func TestChargeHappyPath(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	txnTime := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	fake := &fakeGateway{AuthResult: &gateway.AuthorizeResult{
		ID:           "auth-1",
		Status:       gateway.StatusCompleted,
		AuthCode:     "A77301",
		SettlementID: "settle-9",
		TxnTime:      txnTime,
		Raw:          []byte(`{"status":"COMPLETED"}`),
	}}
	s := newSettlement(db, fake)

	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100.005")))

	// amount rounded to cents before the minor-unit conversion
	assert.Equal(t, int64(10001), fake.LastAuthReq.AmountMinor)
	assert.True(t, fake.LastAuthReq.SettleWithAuth)
	assert.Equal(t, "RECURRING", fake.LastAuthReq.Recurring)
	assert.Equal(t, "TOK-abc123", fake.LastAuthReq.PaymentToken)
	assert.Regexp(t, merchantRefPattern, fake.LastAuthReq.MerchantRefNum)

	var txn model.Transaction
	require.NoError(t, db.Where("transaction_enrollment_id = ?", f.Enrollment.EnrollmentID).Take(&txn).Error)
	assert.True(t, d("100.01").Equal(txn.TransactionAmount), "got %s", txn.TransactionAmount)
	assert.True(t, d("100.01").Equal(txn.TransactionAttemptedAmount))
	assert.Equal(t, fake.LastAuthReq.MerchantRefNum, txn.TransactionOrderID)
	require.NotNil(t, txn.TransactionAuthorizationCode)
	assert.Equal(t, "A77301", *txn.TransactionAuthorizationCode)
	require.NotNil(t, txn.TransactionReferenceNumber)
	assert.Equal(t, "settle-9", *txn.TransactionReferenceNumber)
	assert.Nil(t, txn.TransactionResponseCode)
	assert.Equal(t, txnTime, txn.TransactionDate.UTC())
	assert.False(t, txn.TransactionExtraCharge)

	var method model.PaymentMethod
	require.NoError(t, db.Where("payment_method_id = ?", m.PaymentMethodID).Take(&method).Error)
	assert.Equal(t, 1, method.PaymentMethodTransactionCount)
}

func TestChargeDeclineIsRecorded(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	fake := &fakeGateway{AuthResult: &gateway.AuthorizeResult{
		ID:     "auth-2",
		Status: "FAILED",
		Error:  &gateway.Error{Code: "3022", Message: "the card has been declined due to insufficient funds"},
		Raw:    []byte(`{"status":"FAILED"}`),
	}}
	s := newSettlement(db, fake)

	err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100"))
	requireFiberError(t, err, fiber.StatusBadRequest, "payment method failed")

	// the failed attempt still lands in the ledger, with nothing settled
	var txn model.Transaction
	require.NoError(t, db.Where("transaction_enrollment_id = ?", f.Enrollment.EnrollmentID).Take(&txn).Error)
	assert.True(t, txn.TransactionAmount.IsZero())
	assert.True(t, d("100").Equal(txn.TransactionAttemptedAmount))
	require.NotNil(t, txn.TransactionResponseCode)
	assert.Equal(t, 3022, *txn.TransactionResponseCode)
	require.NotNil(t, txn.TransactionResponse)
	assert.Equal(t, "the card has been declined due to insufficient funds", *txn.TransactionResponse)

	var method model.PaymentMethod
	require.NoError(t, db.Where("payment_method_id = ?", m.PaymentMethodID).Take(&method).Error)
	assert.Equal(t, 1, method.PaymentMethodTransactionCount)

	// the declined attempt settled nothing, so owing is unchanged
	owing, err := EnrollmentOwing(context.Background(), db, &f.Enrollment)
	require.NoError(t, err)
	assert.True(t, d("1000").Equal(owing))
}

func TestChargeTransportFailure(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	fake := &fakeGateway{AuthErr: errors.New("dial tcp: i/o timeout")}
	s := newSettlement(db, fake)

	err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100"))
	require.Error(t, err)
	var fe *fiber.Error
	assert.False(t, errors.As(err, &fe), "transport failures surface as-is, not as client errors")
	assert.Zero(t, countTransactions(t, db, f.Enrollment.EnrollmentID), "nothing recorded when the gateway outcome is unknown")
}

func TestChargeClearsHold(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	statusDate := time.Now()
	require.NoError(t, db.Model(&model.Enrollment{}).
		Where("enrollment_id = ?", f.Enrollment.EnrollmentID).
		Updates(map[string]interface{}{
			"enrollment_status":      model.EnrollmentStatusOnHold,
			"enrollment_status_date": statusDate,
		}).Error)

	s := newSettlement(db, &fakeGateway{})

	// installment is 100; a full installment clears the hold
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100")))

	var e model.Enrollment
	require.NoError(t, db.Where("enrollment_id = ?", f.Enrollment.EnrollmentID).Take(&e).Error)
	assert.Nil(t, e.EnrollmentStatus)
	assert.Nil(t, e.EnrollmentStatusDate)
}

func TestChargeBelowInstallmentKeepsHold(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	require.NoError(t, db.Model(&model.Enrollment{}).
		Where("enrollment_id = ?", f.Enrollment.EnrollmentID).
		Update("enrollment_status", model.EnrollmentStatusOnHold).Error)

	s := newSettlement(db, &fakeGateway{})
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("99.99")))

	var e model.Enrollment
	require.NoError(t, db.Where("enrollment_id = ?", f.Enrollment.EnrollmentID).Take(&e).Error)
	require.NotNil(t, e.EnrollmentStatus)
	assert.Equal(t, model.EnrollmentStatusOnHold, *e.EnrollmentStatus)
}

func TestChargeFinalBalanceClearsHold(t *testing.T) {
	// owing has dropped below one installment; paying it off in full
	// still clears the hold because the threshold is min(installment, owing)
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	require.NoError(t, db.Create(&model.Transaction{
		TransactionEnrollmentID:    f.Enrollment.EnrollmentID,
		TransactionPaymentMethodID: m.PaymentMethodID,
		TransactionAmount:          d("960"),
		TransactionAttemptedAmount: d("960"),
		TransactionOrderID:         "20260101000000000_si_54321",
		TransactionType:            model.TransactionTypeCharge,
		TransactionDescription:     model.TransactionDescriptionStudentInitiated,
		TransactionDate:            time.Now(),
	}).Error)
	require.NoError(t, db.Model(&model.Enrollment{}).
		Where("enrollment_id = ?", f.Enrollment.EnrollmentID).
		Update("enrollment_status", model.EnrollmentStatusOnHold).Error)

	s := newSettlement(db, &fakeGateway{})
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("40")))

	var e model.Enrollment
	require.NoError(t, db.Where("enrollment_id = ?", f.Enrollment.EnrollmentID).Take(&e).Error)
	assert.Nil(t, e.EnrollmentStatus)
}

func TestChargeFullBalance(t *testing.T) {
	db := setupDB(t)
	f := seedEnrollment(t, db)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	fake := &fakeGateway{}
	s := newSettlement(db, fake)

	// over the balance: rejected before the gateway, nothing recorded
	err := s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("1200"))
	requireFiberError(t, err, fiber.StatusBadRequest, "amount is higher than amount owing")
	assert.Zero(t, fake.Calls())
	assert.Zero(t, countTransactions(t, db, f.Enrollment.EnrollmentID))

	// the full balance settles and owing drops to zero
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("1000")))
	assert.Equal(t, int64(1), countTransactions(t, db, f.Enrollment.EnrollmentID))

	owing, err := EnrollmentOwing(context.Background(), db, &f.Enrollment)
	require.NoError(t, err)
	assert.True(t, owing.IsZero(), "got %s", owing)
}

func TestChargeRoutesByVaultedRegion(t *testing.T) {
	// the method was vaulted under CA; charges keep using that region
	// even for a currency that would derive a different one
	db := setupDB(t)
	f := seedEnrollment(t, db)
	require.NoError(t, db.Model(&model.Currency{}).
		Where("currency_id = ?", f.Currency.CurrencyID).
		Update("currency_code", "USD").Error)
	m := seedTokenizedMethod(t, db, f.Enrollment.EnrollmentID)

	fake := &fakeGateway{}
	s := newSettlement(db, fake)
	require.NoError(t, s.Charge(context.Background(), f.Student.StudentID, f.Enrollment.EnrollmentID, m.PaymentMethodID, amt("100")))

	assert.Equal(t, "ca-key", fake.Acct.APIKey)
	assert.Equal(t, "1002", fake.Acct.AccountNumber)
}
