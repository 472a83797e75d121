package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/dto"
	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Payment method vault

   Turns a raw card submission into a gateway-tokenized,
   locally-persisted payment method:

     profile → address → card → attach address → verify →
     persist + promote to primary (one local transaction)

   There is no compensation against the gateway on partial
   failure: a profile or card created before a later step
   fails is left orphaned at the gateway and logged for
   manual cleanup.
========================================================= */

const (
	minPanLength   = 12
	maximumCardAge = 8 // years
	merchantRefTag = "si"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)
var cscPattern = regexp.MustCompile(`^\d{3,4}$`)

type Vault struct {
	DB     *gorm.DB
	Router *MerchantRouter
	Dial   gateway.Factory
}

// CreatePaymentMethod runs the tokenization protocol and returns the new
// payment method's id.
func (v *Vault) CreatePaymentMethod(ctx context.Context, studentID, enrollmentID int64, in dto.CreatePaymentMethodRequest) (int64, error) {
	if in.PaymentType != "credit card" {
		if in.PaymentType == "" {
			return 0, fiber.NewError(fiber.StatusBadRequest, "payment_type is required")
		}
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid payment_type")
	}

	expiryMonth, expiryYear, err := validateCard(in)
	if err != nil {
		return 0, err
	}

	student, err := FindStudent(ctx, v.DB, studentID)
	if err != nil {
		return 0, err
	}
	enrollment, err := FindEnrollment(ctx, v.DB, studentID, enrollmentID)
	if err != nil {
		return 0, err
	}
	currency, err := FindCurrency(ctx, v.DB, enrollment.EnrollmentCurrencyID)
	if err != nil {
		return 0, err
	}
	course, err := FindCourse(ctx, v.DB, enrollment.EnrollmentCourseID)
	if err != nil {
		return 0, err
	}

	region := RegionForCurrency(currency.CurrencyCode)
	acct, err := v.Router.Resolve(region, currency.CurrencyCode)
	if err != nil {
		return 0, err
	}
	gw := v.Dial(acct)

	// 1. payer profile
	gender := "F"
	if student.StudentSex == "M" {
		gender = "M"
	}
	profileReq := gateway.CreateProfileRequest{
		MerchantCustomerID: NewCustomerID(fmt.Sprintf("%s%d", course.CoursePrefix, enrollmentID)),
		Locale:             "en_US",
		FirstName:          student.StudentFirstName,
		LastName:           student.StudentLastName,
		Gender:             gender,
		Email:              student.StudentEmailAddress,
	}
	if student.StudentTelephoneNumber != nil {
		profileReq.Phone = *student.StudentTelephoneNumber
	}
	profileResult, err := gw.CreateProfile(ctx, profileReq)
	if err != nil {
		return 0, err
	}
	if profileResult.Error != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, profileResult.Error.Message)
	}
	if profileResult.ID == "" {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "profile id is empty")
	}

	// 2. billing address
	addressReq := gateway.CreateAddressRequest{
		ProfileID:       profileResult.ID,
		Street:          student.StudentAddress1,
		City:            student.StudentCity,
		Zip:             zipOrSentinel(student.StudentPostalCode),
		Country:         student.StudentCountryCode,
		DefaultShipping: true,
	}
	if student.StudentAddress2 != nil {
		addressReq.Street2 = *student.StudentAddress2
	}
	if countryHasStates(student.StudentCountryCode) && student.StudentProvinceCode != nil {
		addressReq.State = *student.StudentProvinceCode
	}
	addressResult, err := gw.CreateAddress(ctx, addressReq)
	if err != nil {
		return 0, err
	}
	if addressResult.Error != nil {
		log.Printf("[VAULT] address creation failed for profile %s: %s (orphaned profile left at gateway)",
			profileResult.ID, addressResult.Error.Message)
		return 0, fiber.NewError(fiber.StatusInternalServerError, addressResult.Error.Message)
	}
	if addressResult.ID == "" {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "address id is empty")
	}

	// 3. card
	cardResult, err := gw.CreateCard(ctx, gateway.CreateCardRequest{
		ProfileID:   profileResult.ID,
		CardNum:     in.Pan,
		ExpiryMonth: expiryMonth,
		ExpiryYear:  expiryYear,
	})
	if err != nil {
		return 0, err
	}
	if cardResult.Error != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, cardResult.Error.Message)
	}
	if cardResult.ID == "" {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "card id is empty")
	}
	if cardResult.PaymentToken == "" {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "payment token is empty")
	}
	maskedPan := maskPan(in.Pan, cardResult.CardBin, cardResult.LastDigits)

	// 4. attach the billing address to the card
	updateResult, err := gw.UpdateCard(ctx, gateway.UpdateCardRequest{
		ProfileID:        profileResult.ID,
		CardID:           cardResult.ID,
		BillingAddressID: addressResult.ID,
		ExpiryMonth:      cardResult.ExpiryMonth,
		ExpiryYear:       cardResult.ExpiryYear,
	})
	if err != nil {
		return 0, err
	}
	if updateResult.Error != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, updateResult.Error.Message)
	}

	// 5. zero-amount verification
	verifyResult, err := gw.Verify(ctx, gateway.VerifyRequest{
		MerchantRefNum: NewMerchantRef(merchantRefTag),
		PaymentToken:   cardResult.PaymentToken,
	})
	if err != nil {
		return 0, err
	}
	if verifyResult.Error != nil {
		log.Printf("[VAULT] verification declined for profile %s card %s: %s",
			profileResult.ID, cardResult.ID, verifyResult.Error.Message)
		return 0, fiber.NewError(fiber.StatusBadRequest, verifyResult.Error.Message)
	}

	// 6. persist and promote to primary
	profileID := profileResult.ID
	cardID := cardResult.ID
	token := cardResult.PaymentToken
	method := model.PaymentMethod{
		PaymentMethodEnrollmentID: enrollmentID,
		PaymentMethodType:         model.PaymentTypePaysafe,
		PaymentMethodPan:          maskedPan,
		PaymentMethodExpiryMonth:  expiryMonth,
		PaymentMethodExpiryYear:   expiryYear,
		PaymentMethodProfileID:    &profileID,
		PaymentMethodCardID:       &cardID,
		PaymentMethodPaymentToken: &token,
		PaymentMethodCompany:      region,
		PaymentMethodNotified:     0,
	}

	err = v.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&method).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.PaymentMethod{}).
			Where("payment_method_enrollment_id = ?", enrollmentID).
			Update("payment_method_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.PaymentMethod{}).
			Where("payment_method_id = ?", method.PaymentMethodID).
			Update("payment_method_primary", true).Error
	})
	if err != nil {
		log.Printf("[VAULT] could not store new credit card for enrollment %d (gateway profile %s is orphaned): %v",
			enrollmentID, profileID, err)
		return 0, err
	}

	return method.PaymentMethodID, nil
}

// SetPrimary flips the enrollment's primary payment method atomically:
// all methods are demoted, then the chosen one promoted, in one
// transaction, so exactly one primary survives.
func (v *Vault) SetPrimary(ctx context.Context, studentID, enrollmentID, paymentMethodID int64) error {
	if _, err := FindStudent(ctx, v.DB, studentID); err != nil {
		return err
	}
	if _, err := FindEnrollment(ctx, v.DB, studentID, enrollmentID); err != nil {
		return err
	}
	if _, err := FindPaymentMethod(ctx, v.DB, enrollmentID, paymentMethodID); err != nil {
		return err
	}

	return v.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PaymentMethod{}).
			Where("payment_method_enrollment_id = ?", enrollmentID).
			Update("payment_method_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.PaymentMethod{}).
			Where("payment_method_id = ?", paymentMethodID).
			Update("payment_method_primary", true).Error
	})
}

/* ===================== Validation ===================== */

func validateCard(in dto.CreatePaymentMethodRequest) (month, year int, err error) {
	if in.CSC == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "csc is missing")
	}
	if !cscPattern.MatchString(in.CSC) {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "csc must be a three- or four-digit number")
	}

	if in.Pan == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "pan is missing")
	}
	if len(in.Pan) < minPanLength {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid pan: too short")
	}

	if in.ExpiryMonth == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "expiry_month is missing")
	}
	if !digitsOnly.MatchString(in.ExpiryMonth) {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity, "expiry_month must be a number")
	}
	month, _ = strconv.Atoi(in.ExpiryMonth)
	if month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid expiry month: must be between 1 and 12")
	}

	currentYear := time.Now().Year()
	maxYear := currentYear + maximumCardAge
	if in.ExpiryYear == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "expiry_year is missing")
	}
	if !digitsOnly.MatchString(in.ExpiryYear) {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity, "expiry_year must be an integer")
	}
	year, _ = strconv.Atoi(in.ExpiryYear)
	if year < currentYear || year > maxYear {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity,
			fmt.Sprintf("invalid expiry year: must be between %d and %d", currentYear, maxYear))
	}

	currentMonth := int(time.Now().Month())
	if year == currentYear && month < currentMonth {
		return 0, 0, fiber.NewError(fiber.StatusUnprocessableEntity, "expired card")
	}

	return month, year, nil
}

func countryHasStates(countryCode string) bool {
	switch countryCode {
	case "CA", "US", "AU":
		return true
	default:
		return false
	}
}

func zipOrSentinel(postalCode *string) string {
	if postalCode == nil || *postalCode == "" {
		return "NA"
	}
	return *postalCode
}

// maskPan keeps the issuer bin and last digits visible. Falls back to a
// last-4 mask when the gateway did not echo bin/last digits.
func maskPan(pan, bin, lastDigits string) string {
	if bin == "" && lastDigits == "" {
		const unmasked = 4
		if len(pan) <= unmasked {
			return pan
		}
		return strings.Repeat("*", len(pan)-unmasked) + pan[len(pan)-unmasked:]
	}
	masked := len(pan) - len(bin) - len(lastDigits)
	if masked < 0 {
		masked = 0
	}
	return bin + strings.Repeat("*", masked) + lastDigits
}
