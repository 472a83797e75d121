package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/dto"
	"studentbilling_backend/internals/features/finance/payments/service"
	helper "studentbilling_backend/internals/helpers"
)

type EnrollmentController struct {
	DB *gorm.DB
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{DB: db}
}

// Get returns one enrollment with its amount paid and remaining balance
// computed through the ledger.
func (h *EnrollmentController) Get(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ctx := c.UserContext()

	if _, err := service.FindStudent(ctx, h.DB, studentID); err != nil {
		return helper.FromFiberError(c, err)
	}
	enrollment, err := service.FindEnrollment(ctx, h.DB, studentID, enrollmentID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	course, err := service.FindCourse(ctx, h.DB, enrollment.EnrollmentCourseID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	currency, err := service.FindCurrency(ctx, h.DB, enrollment.EnrollmentCurrencyID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	paid, err := service.SumTuitionPaid(ctx, h.DB, enrollmentID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out := dto.EnrollmentResponse{
		ID:               enrollment.EnrollmentID,
		CourseCode:       course.CourseCode,
		CourseName:       course.CourseName,
		CurrencyCode:     currency.CurrencyCode,
		Cost:             enrollment.EnrollmentCost,
		Discount:         enrollment.EnrollmentDiscount,
		Installment:      enrollment.EnrollmentInstallment,
		PaymentFrequency: enrollment.EnrollmentPaymentFrequency,
		Status:           enrollment.EnrollmentStatus,
		StatusDate:       enrollment.EnrollmentStatusDate,
		AmountPaid:       paid,
		RemainingBalance: service.Owing(enrollment.EnrollmentCost, enrollment.EnrollmentDiscount, paid),
	}
	return helper.Success(c, "enrollment fetched", out)
}
