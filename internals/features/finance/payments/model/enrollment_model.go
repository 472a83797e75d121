package model

import (
	"time"

	"github.com/shopspring/decimal"
)

/* ===================== Enums (string) ===================== */
/* Enrollment status codes as stored by the admissions system.
   NULL means the enrollment is active and in good standing. */

const (
	EnrollmentStatusOnHold      = "H"
	EnrollmentStatusTransferred = "T"
	EnrollmentStatusWithdrawn   = "W"
)

/* ===================== Models ===================== */

type Enrollment struct {
	EnrollmentID         int64      `gorm:"column:enrollment_id;primaryKey;autoIncrement" json:"enrollment_id"`
	EnrollmentStudentID  int64      `gorm:"column:enrollment_student_id;not null;index" json:"enrollment_student_id"`
	EnrollmentCourseID   int64      `gorm:"column:enrollment_course_id;not null" json:"enrollment_course_id"`
	EnrollmentCurrencyID int64      `gorm:"column:enrollment_currency_id;not null" json:"enrollment_currency_id"`

	EnrollmentCost             decimal.Decimal `gorm:"column:enrollment_cost;type:numeric(10,2);not null" json:"enrollment_cost"`
	EnrollmentDiscount         decimal.Decimal `gorm:"column:enrollment_discount;type:numeric(10,2);not null" json:"enrollment_discount"`
	EnrollmentInstallment      decimal.Decimal `gorm:"column:enrollment_installment;type:numeric(10,2);not null" json:"enrollment_installment"`
	EnrollmentPaymentFrequency string          `gorm:"column:enrollment_payment_frequency;type:varchar(16)" json:"enrollment_payment_frequency"`

	EnrollmentStatus     *string    `gorm:"column:enrollment_status;type:char(1)" json:"enrollment_status,omitempty"`
	EnrollmentStatusDate *time.Time `gorm:"column:enrollment_status_date" json:"enrollment_status_date,omitempty"`

	// account id in the student center database, used for cross-system sync
	EnrollmentAccountID *int64 `gorm:"column:enrollment_account_id" json:"enrollment_account_id,omitempty"`

	CreatedAt time.Time `gorm:"column:enrollment_created_at;autoCreateTime" json:"enrollment_created_at"`
	UpdatedAt time.Time `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"enrollment_updated_at"`
}

func (Enrollment) TableName() string { return "enrollments" }

func (e *Enrollment) IsOnHold() bool {
	return e.EnrollmentStatus != nil && *e.EnrollmentStatus == EnrollmentStatusOnHold
}

// Chargeable reports whether the enrollment may still be billed.
func (e *Enrollment) Chargeable() bool {
	if e.EnrollmentStatus == nil {
		return true
	}
	switch *e.EnrollmentStatus {
	case EnrollmentStatusTransferred, EnrollmentStatusWithdrawn:
		return false
	default:
		return true
	}
}

type Course struct {
	CourseID     int64  `gorm:"column:course_id;primaryKey;autoIncrement" json:"course_id"`
	CourseCode   string `gorm:"column:course_code;type:varchar(16);not null" json:"course_code"`
	CoursePrefix string `gorm:"column:course_prefix;type:varchar(8);not null" json:"course_prefix"`
	CourseName   string `gorm:"column:course_name;type:varchar(128);not null" json:"course_name"`
}

func (Course) TableName() string { return "courses" }

type Currency struct {
	CurrencyID           int64           `gorm:"column:currency_id;primaryKey;autoIncrement" json:"currency_id"`
	CurrencyCode         string          `gorm:"column:currency_code;type:char(3);not null" json:"currency_code"`
	CurrencyName         string          `gorm:"column:currency_name;type:varchar(32);not null" json:"currency_name"`
	CurrencySymbol       string          `gorm:"column:currency_symbol;type:varchar(8)" json:"currency_symbol"`
	CurrencyExchangeRate decimal.Decimal `gorm:"column:currency_exchange_rate;type:numeric(10,6);not null" json:"currency_exchange_rate"`
}

func (Currency) TableName() string { return "currencies" }

type Student struct {
	StudentID              int64   `gorm:"column:student_id;primaryKey;autoIncrement" json:"student_id"`
	StudentSex             string  `gorm:"column:student_sex;type:char(1);not null" json:"student_sex"`
	StudentFirstName       string  `gorm:"column:student_first_name;type:varchar(64);not null" json:"student_first_name"`
	StudentLastName        string  `gorm:"column:student_last_name;type:varchar(64);not null" json:"student_last_name"`
	StudentAddress1        string  `gorm:"column:student_address1;type:varchar(128)" json:"student_address1"`
	StudentAddress2        *string `gorm:"column:student_address2;type:varchar(128)" json:"student_address2,omitempty"`
	StudentCity            string  `gorm:"column:student_city;type:varchar(64)" json:"student_city"`
	StudentProvinceCode    *string `gorm:"column:student_province_code;type:varchar(8)" json:"student_province_code,omitempty"`
	StudentPostalCode      *string `gorm:"column:student_postal_code;type:varchar(16)" json:"student_postal_code,omitempty"`
	StudentCountryCode     string  `gorm:"column:student_country_code;type:char(2);not null" json:"student_country_code"`
	StudentEmailAddress    string  `gorm:"column:student_email_address;type:varchar(128);not null" json:"student_email_address"`
	StudentTelephoneNumber *string `gorm:"column:student_telephone_number;type:varchar(32)" json:"student_telephone_number,omitempty"`
}

func (Student) TableName() string { return "students" }
