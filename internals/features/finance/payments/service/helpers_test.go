package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studentbilling_backend/internals/configs"
	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Student{},
		&model.Course{},
		&model.Currency{},
		&model.Enrollment{},
		&model.PaymentMethod{},
		&model.Transaction{},
	))
	return db
}

type fixture struct {
	Student    model.Student
	Course     model.Course
	Currency   model.Currency
	Enrollment model.Enrollment
}

// seedEnrollment creates one student with one CAD enrollment:
// cost 1000, no discount, 100 installments.
func seedEnrollment(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	province := "ON"
	postal := "K1A 0B1"
	phone := "613-555-0199"
	f := fixture{
		Student: model.Student{
			StudentSex:             "F",
			StudentFirstName:       "Alice",
			StudentLastName:        "Martin",
			StudentAddress1:        "101 Bank St",
			StudentCity:            "Ottawa",
			StudentProvinceCode:    &province,
			StudentPostalCode:      &postal,
			StudentCountryCode:     "CA",
			StudentEmailAddress:    "alice.martin@example.com",
			StudentTelephoneNumber: &phone,
		},
		Course: model.Course{
			CourseCode:   "MZ",
			CoursePrefix: "MZ",
			CourseName:   "Makeup Artistry",
		},
		Currency: model.Currency{
			CurrencyCode:         "CAD",
			CurrencyName:         "Canadian dollar",
			CurrencySymbol:       "$",
			CurrencyExchangeRate: decimal.NewFromInt(1),
		},
	}
	require.NoError(t, db.Create(&f.Student).Error)
	require.NoError(t, db.Create(&f.Course).Error)
	require.NoError(t, db.Create(&f.Currency).Error)

	f.Enrollment = model.Enrollment{
		EnrollmentStudentID:        f.Student.StudentID,
		EnrollmentCourseID:         f.Course.CourseID,
		EnrollmentCurrencyID:       f.Currency.CurrencyID,
		EnrollmentCost:             decimal.NewFromInt(1000),
		EnrollmentDiscount:         decimal.Zero,
		EnrollmentInstallment:      decimal.NewFromInt(100),
		EnrollmentPaymentFrequency: "monthly",
	}
	require.NoError(t, db.Create(&f.Enrollment).Error)
	return f
}

// seedTokenizedMethod stores a vaulted Paysafe method for the enrollment.
func seedTokenizedMethod(t *testing.T, db *gorm.DB, enrollmentID int64) model.PaymentMethod {
	t.Helper()
	profileID := "prof-1"
	cardID := "card-1"
	token := "TOK-abc123"
	m := model.PaymentMethod{
		PaymentMethodEnrollmentID: enrollmentID,
		PaymentMethodType:         model.PaymentTypePaysafe,
		PaymentMethodPan:          "411111******1111",
		PaymentMethodExpiryMonth:  12,
		PaymentMethodExpiryYear:   2030,
		PaymentMethodProfileID:    &profileID,
		PaymentMethodCardID:       &cardID,
		PaymentMethodPaymentToken: &token,
		PaymentMethodCompany:      configs.MerchantRegionCA,
		PaymentMethodPrimary:      true,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func testPaysafeConfig() *configs.PaysafeConfig {
	return &configs.PaysafeConfig{
		Environment: "TEST",
		Regions: map[string]configs.RegionCredentials{
			configs.MerchantRegionCA: {
				APIKey:    "ca-key",
				APISecret: "ca-secret",
				Accounts: map[string]string{
					"CAD": "1001", "USD": "1002", "GBP": "1003", "AUD": "1004", "NZD": "1005",
				},
			},
			configs.MerchantRegionUS: {
				APIKey:    "us-key",
				APISecret: "us-secret",
				Accounts:  map[string]string{"USD": "2001"},
			},
			configs.MerchantRegionGB: {
				APIKey:    "gb-key",
				APISecret: "gb-secret",
				Accounts:  map[string]string{"GBP": "3001", "AUD": "3002", "NZD": "3003"},
			},
		},
	}
}

/* ===================== Fake gateway ===================== */

// fakeGateway answers every vault and card-payment call from canned
// results. Zero values answer the happy path; tests override a result
// (or an error) to exercise one failure leg.
type fakeGateway struct {
	Acct gateway.Account

	ProfileCalls int
	AddressCalls int
	CardCalls    int
	UpdateCalls  int
	VerifyCalls  int
	AuthCalls    int

	LastProfileReq gateway.CreateProfileRequest
	LastAddressReq gateway.CreateAddressRequest
	LastCardReq    gateway.CreateCardRequest
	LastUpdateReq  gateway.UpdateCardRequest
	LastVerifyReq  gateway.VerifyRequest
	LastAuthReq    gateway.AuthorizeRequest

	ProfileResult *gateway.CreateProfileResult
	AddressResult *gateway.CreateAddressResult
	CardResult    *gateway.CreateCardResult
	UpdateResult  *gateway.UpdateCardResult
	VerifyResult  *gateway.VerifyResult
	AuthResult    *gateway.AuthorizeResult

	AuthErr error
}

func (f *fakeGateway) Factory() gateway.Factory {
	return func(acct gateway.Account) gateway.Client {
		f.Acct = acct
		return f
	}
}

func (f *fakeGateway) Calls() int {
	return f.ProfileCalls + f.AddressCalls + f.CardCalls + f.UpdateCalls + f.VerifyCalls + f.AuthCalls
}

func (f *fakeGateway) CreateProfile(_ context.Context, req gateway.CreateProfileRequest) (*gateway.CreateProfileResult, error) {
	f.ProfileCalls++
	f.LastProfileReq = req
	if f.ProfileResult != nil {
		return f.ProfileResult, nil
	}
	return &gateway.CreateProfileResult{ID: "prof-1"}, nil
}

func (f *fakeGateway) CreateAddress(_ context.Context, req gateway.CreateAddressRequest) (*gateway.CreateAddressResult, error) {
	f.AddressCalls++
	f.LastAddressReq = req
	if f.AddressResult != nil {
		return f.AddressResult, nil
	}
	return &gateway.CreateAddressResult{ID: "addr-1"}, nil
}

func (f *fakeGateway) CreateCard(_ context.Context, req gateway.CreateCardRequest) (*gateway.CreateCardResult, error) {
	f.CardCalls++
	f.LastCardReq = req
	if f.CardResult != nil {
		return f.CardResult, nil
	}
	return &gateway.CreateCardResult{
		ID:           "card-1",
		PaymentToken: "TOK-abc123",
		CardBin:      req.CardNum[:6],
		LastDigits:   req.CardNum[len(req.CardNum)-4:],
		ExpiryMonth:  req.ExpiryMonth,
		ExpiryYear:   req.ExpiryYear,
	}, nil
}

func (f *fakeGateway) UpdateCard(_ context.Context, req gateway.UpdateCardRequest) (*gateway.UpdateCardResult, error) {
	f.UpdateCalls++
	f.LastUpdateReq = req
	if f.UpdateResult != nil {
		return f.UpdateResult, nil
	}
	return &gateway.UpdateCardResult{}, nil
}

func (f *fakeGateway) Verify(_ context.Context, req gateway.VerifyRequest) (*gateway.VerifyResult, error) {
	f.VerifyCalls++
	f.LastVerifyReq = req
	if f.VerifyResult != nil {
		return f.VerifyResult, nil
	}
	return &gateway.VerifyResult{ID: "verif-1", Status: gateway.StatusCompleted}, nil
}

func (f *fakeGateway) AuthorizeAndSettle(_ context.Context, req gateway.AuthorizeRequest) (*gateway.AuthorizeResult, error) {
	f.AuthCalls++
	f.LastAuthReq = req
	if f.AuthErr != nil {
		return nil, f.AuthErr
	}
	if f.AuthResult != nil {
		return f.AuthResult, nil
	}
	return &gateway.AuthorizeResult{
		ID:           "auth-1",
		Status:       gateway.StatusCompleted,
		AuthCode:     "123456",
		SettlementID: "settle-1",
		Raw:          []byte(`{"status":"COMPLETED"}`),
	}, nil
}

/* ===================== Assertions ===================== */

func requireFiberError(t *testing.T, err error, wantCode int, wantMessage string) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, wantCode, fe.Code)
	require.Equal(t, wantMessage, fe.Message)
}
