package service

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Shared lookups

   Every operation on /students/:sId/enrollments/:eId/...
   re-checks the ownership chain before acting: the student
   must exist, the enrollment must belong to the student,
   and the payment method must belong to the enrollment.
========================================================= */

func FindStudent(ctx context.Context, db *gorm.DB, studentID int64) (*model.Student, error) {
	var s model.Student
	err := db.WithContext(ctx).Where("student_id = ?", studentID).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "student not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func FindEnrollment(ctx context.Context, db *gorm.DB, studentID, enrollmentID int64) (*model.Enrollment, error) {
	var e model.Enrollment
	err := db.WithContext(ctx).
		Where("enrollment_student_id = ? AND enrollment_id = ?", studentID, enrollmentID).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "enrollment not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func FindPaymentMethod(ctx context.Context, db *gorm.DB, enrollmentID, paymentMethodID int64) (*model.PaymentMethod, error) {
	var p model.PaymentMethod
	err := db.WithContext(ctx).
		Where("payment_method_enrollment_id = ? AND payment_method_id = ?", enrollmentID, paymentMethodID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "payment method not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func FindCourse(ctx context.Context, db *gorm.DB, courseID int64) (*model.Course, error) {
	var c model.Course
	err := db.WithContext(ctx).Where("course_id = ?", courseID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "course not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func FindCurrency(ctx context.Context, db *gorm.DB, currencyID int64) (*model.Currency, error) {
	var c model.Currency
	err := db.WithContext(ctx).Where("currency_id = ?", currencyID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "currency not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
