package controller

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/dto"
	"studentbilling_backend/internals/features/finance/payments/gateway"
	"studentbilling_backend/internals/features/finance/payments/model"
	"studentbilling_backend/internals/features/finance/payments/service"
	helper "studentbilling_backend/internals/helpers"
)

/* =======================================================================
   Controller
======================================================================= */

type PaymentMethodController struct {
	DB         *gorm.DB
	Validator  *validator.Validate
	Vault      *service.Vault
	Settlement *service.Settlement
}

func NewPaymentMethodController(db, remote *gorm.DB, router *service.MerchantRouter, dial gateway.Factory) *PaymentMethodController {
	return &PaymentMethodController{
		DB:        db,
		Validator: validator.New(),
		Vault: &service.Vault{
			DB:     db,
			Router: router,
			Dial:   dial,
		},
		Settlement: &service.Settlement{
			DB:     db,
			Remote: remote,
			Router: router,
			Dial:   dial,
		},
	}
}

// Create tokenizes a submitted card and stores it as the enrollment's
// new primary payment method.
func (h *PaymentMethodController) Create(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreatePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	id, err := h.Vault.CreatePaymentMethod(c.UserContext(), studentID, enrollmentID, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	c.Set(fiber.HeaderLocation,
		fmt.Sprintf("/api/v2/students/%d/enrollments/%d/paymentMethods/%d", studentID, enrollmentID, id))
	return helper.SuccessWithCode(c, fiber.StatusCreated, "payment method created", fiber.Map{"id": id})
}

// List returns the enrollment's payment methods. ?cheques=0 hides the
// legacy cheque entries.
func (h *PaymentMethodController) List(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ctx := c.UserContext()

	if _, err := service.FindStudent(ctx, h.DB, studentID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := service.FindEnrollment(ctx, h.DB, studentID, enrollmentID); err != nil {
		return helper.FromFiberError(c, err)
	}

	q := h.DB.WithContext(ctx).Where("payment_method_enrollment_id = ?", enrollmentID)
	if c.Query("cheques") == "0" {
		q = q.Where("payment_method_type <> ?", model.PaymentTypeCheques)
	}

	var methods []model.PaymentMethod
	if err := q.Find(&methods).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	out := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, dto.NewPaymentMethodResponse(&methods[i]))
	}

	c.Set("X-Total", strconv.Itoa(len(out)))
	return helper.Success(c, "payment methods fetched", out)
}

func (h *PaymentMethodController) Get(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paymentMethodID, err := paramID(c, "pId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ctx := c.UserContext()

	if _, err := service.FindStudent(ctx, h.DB, studentID); err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := service.FindEnrollment(ctx, h.DB, studentID, enrollmentID); err != nil {
		return helper.FromFiberError(c, err)
	}
	method, err := service.FindPaymentMethod(ctx, h.DB, enrollmentID, paymentMethodID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	return helper.Success(c, "payment method fetched", dto.NewPaymentMethodResponse(method))
}

// SetPrimary makes this payment method the enrollment's primary one and
// demotes all others.
func (h *PaymentMethodController) SetPrimary(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paymentMethodID, err := paramID(c, "pId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := h.Vault.SetPrimary(c.UserContext(), studentID, enrollmentID, paymentMethodID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Charge settles an amount against the payment method.
func (h *PaymentMethodController) Charge(c *fiber.Ctx) error {
	studentID, enrollmentID, err := pathIDs(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paymentMethodID, err := paramID(c, "pId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.ChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "amount is not a number")
	}

	if err := h.Settlement.Charge(c.UserContext(), studentID, enrollmentID, paymentMethodID, req.Amount); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "payment settled", fiber.Map{"success": true})
}

/* ===================== Param helpers ===================== */

func pathIDs(c *fiber.Ctx) (studentID, enrollmentID int64, err error) {
	studentID, err = paramID(c, "sId")
	if err != nil {
		return 0, 0, err
	}
	enrollmentID, err = paramID(c, "eId")
	if err != nil {
		return 0, 0, err
	}
	return studentID, enrollmentID, nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
