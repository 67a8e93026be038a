package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/models"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type paymentSummary struct {
	CustomerOrderID  uint            `json:"customer_order_id"`
	OrderTotal       decimal.Decimal `json:"order_total"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentCount     int             `json:"payment_count"`
	IsFullyPaid      bool            `json:"is_fully_paid"`
}

type paymentDetails struct {
	models.Payment
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderTotal   decimal.Decimal `json:"order_total"`
}

func (h *PaymentHandler) GetPayments(c echo.Context) error {
	var payments []models.Payment
	if err := h.DB.Order("created_at DESC").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPaymentsByStatus(c echo.Context) error {
	status := models.PaymentStatus(c.Param("status"))
	if !status.Valid() {
		return detail(c, http.StatusBadRequest, fmt.Sprintf("unknown payment status %q", status))
	}
	var payments []models.Payment
	if err := h.DB.Where("payment_status = ?", status).Order("created_at DESC").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPaymentsByMethod(c echo.Context) error {
	method := models.PaymentMethod(c.Param("method"))
	if !method.Valid() {
		return detail(c, http.StatusBadRequest, fmt.Sprintf("unknown payment method %q", method))
	}
	var payments []models.Payment
	if err := h.DB.Where("payment_method = ?", method).Order("created_at DESC").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPaymentsByOrder(c echo.Context) error {
	orderID, err := parseUintParam(c, "order_id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid order id")
	}
	var payments []models.Payment
	if err := h.DB.Where("customer_order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Payment not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) GetPaymentDetails(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	var payment models.Payment
	if err := h.DB.Preload("CustomerOrder.Customer").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Payment not found")
		}
		return err
	}

	customer := payment.CustomerOrder.Customer
	return c.JSON(http.StatusOK, paymentDetails{
		Payment:      payment,
		CustomerID:   payment.CustomerOrder.CustomerID,
		CustomerName: customer.FirstName + " " + customer.LastName,
		OrderTotal:   payment.CustomerOrder.TotalAmount,
	})
}

// GetPaymentSummary reconciles completed payments against the order total.
// Only COMPLETED payments count towards total_paid.
func (h *PaymentHandler) GetPaymentSummary(c echo.Context) error {
	orderID, err := parseUintParam(c, "order_id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid order id")
	}

	var order models.CustomerOrder
	if err := h.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer order not found")
		}
		return err
	}

	var completed []models.Payment
	if err := h.DB.Where("customer_order_id = ? AND payment_status = ?", orderID, models.PaymentCompleted).
		Find(&completed).Error; err != nil {
		return err
	}

	totalPaid := decimal.Zero
	for _, p := range completed {
		totalPaid = totalPaid.Add(p.Amount)
	}
	remaining := order.TotalAmount.Sub(totalPaid)

	return c.JSON(http.StatusOK, paymentSummary{
		CustomerOrderID:  orderID,
		OrderTotal:       order.TotalAmount,
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
		PaymentCount:     len(completed),
		IsFullyPaid:      remaining.LessThanOrEqual(decimal.Zero),
	})
}

// CreatePayment is deliberately permissive: the order must exist and the
// amount must be positive, but neither order status nor remaining balance is
// checked, so overpayment is representable.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req struct {
		CustomerOrderID      uint                 `json:"customer_order_id"`
		Amount               decimal.Decimal      `json:"amount"`
		PaymentMethod        models.PaymentMethod `json:"payment_method"`
		TransactionReference string               `json:"transaction_reference"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if !req.Amount.IsPositive() {
		return detail(c, http.StatusBadRequest, "Payment amount must be greater than 0")
	}
	if !req.PaymentMethod.Valid() {
		return detail(c, http.StatusBadRequest, fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}

	var order models.CustomerOrder
	if err := h.DB.First(&order, req.CustomerOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer order not found")
		}
		return err
	}

	if req.TransactionReference == "" {
		req.TransactionReference = uuid.NewString()
	}

	now := time.Now()
	payment := models.Payment{
		CustomerOrderID:      req.CustomerOrderID,
		Amount:               req.Amount,
		PaymentMethod:        req.PaymentMethod,
		PaymentStatus:        models.PaymentPending,
		TransactionReference: req.TransactionReference,
		PaymentDate:          &now,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicPaymentEvents, fmt.Sprint(payment.ID), map[string]interface{}{
		"type":      "payment_created",
		"paymentID": payment.ID,
		"orderID":   payment.CustomerOrderID,
	})
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) transition(c echo.Context, id uint, next models.PaymentStatus, cols map[string]interface{}) (*models.Payment, error) {
	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(c, http.StatusNotFound, "Payment not found")
		}
		return nil, err
	}
	if !payment.PaymentStatus.CanTransitionTo(next) {
		return nil, detail(c, http.StatusBadRequest,
			fmt.Sprintf("cannot move payment from %q to %q", payment.PaymentStatus, next))
	}

	cols["payment_status"] = next
	if err := h.DB.Model(&payment).Updates(cols).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (h *PaymentHandler) CompletePayment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	now := time.Now()
	payment, err := h.transition(c, id, models.PaymentCompleted, map[string]interface{}{"payment_date": &now})
	if payment == nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicPaymentEvents, fmt.Sprint(id), map[string]interface{}{
		"type":      "payment_completed",
		"paymentID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment completed successfully", "payment_id": id})
}

// FailPayment records the failure; the reason travels in the response only
// and is not persisted.
func (h *PaymentHandler) FailPayment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	reason := c.QueryParam("reason")

	payment, err := h.transition(c, id, models.PaymentFailed, map[string]interface{}{})
	if payment == nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicPaymentEvents, fmt.Sprint(id), map[string]interface{}{
		"type":      "payment_failed",
		"paymentID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Payment marked as failed",
		"payment_id": id,
		"reason":     reason,
	})
}

func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	payment, err := h.transition(c, id, models.PaymentRefunded, map[string]interface{}{})
	if payment == nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicPaymentEvents, fmt.Sprint(id), map[string]interface{}{
		"type":      "payment_refunded",
		"paymentID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Payment refunded successfully",
		"payment_id":      id,
		"refunded_amount": payment.Amount,
	})
}
