package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentbilling_backend/internals/features/finance/payments/dto"
	"studentbilling_backend/internals/features/finance/payments/model"
	"studentbilling_backend/internals/features/finance/payments/service"
	helper "studentbilling_backend/internals/helpers"
)

type TransactionController struct {
	DB *gorm.DB
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db}
}

// List returns an enrollment's transactions. ?type=tuition (default)
// hides extra charges, ?type=extra shows only them, ?type=both shows all.
func (h *TransactionController) List(c *fiber.Ctx) error {
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

	q := h.DB.WithContext(ctx).Where("transaction_enrollment_id = ?", enrollmentID)
	switch c.Query("type", "tuition") {
	case "tuition":
		q = q.Where("transaction_extra_charge = ?", false)
	case "extra":
		q = q.Where("transaction_extra_charge = ?", true)
	case "both":
		// no restriction
	default:
		return helper.Error(c, fiber.StatusBadRequest, "invalid transaction type")
	}

	page := helper.ParsePage(c, "date", "asc", helper.DefaultPageOpts)
	orderClause, err := page.SafeOrderClause(map[string]string{
		"date":   "transaction_date",
		"amount": "transaction_amount",
	}, "date")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&model.Transaction{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	var transactions []model.Transaction
	if err := q.Order(orderClause).Order("transaction_id").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&transactions).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	// attach a payment-method summary per transaction
	methodByID := map[int64]*model.PaymentMethod{}
	out := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		resp := dto.NewTransactionResponse(t)
		method, ok := methodByID[t.TransactionPaymentMethodID]
		if !ok {
			var m model.PaymentMethod
			if err := h.DB.WithContext(ctx).Unscoped().
				Where("payment_method_id = ?", t.TransactionPaymentMethodID).
				Take(&m).Error; err == nil {
				method = &m
			}
			methodByID[t.TransactionPaymentMethodID] = method
		}
		if method != nil {
			pm := dto.NewPaymentMethodResponse(method)
			resp.PaymentMethod = &pm
		}
		out = append(out, resp)
	}

	return helper.SuccessWithMeta(c, "transactions fetched", out, helper.BuildPageMeta(total, page))
}
