package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/retail-backend/internal/models"
)

func (env *testEnv) seedOrderForPayments(t *testing.T, total string) models.CustomerOrder {
	customer := env.createCustomer("payer")
	order := models.CustomerOrder{
		CustomerID:  customer.ID,
		Status:      models.CustomerOrderPending,
		TotalAmount: decimal.RequireFromString(total),
	}
	require.NoError(t, env.DB.Create(&order).Error)
	return order
}

func (env *testEnv) createPayment(t *testing.T, orderID uint, amount string, method models.PaymentMethod) models.Payment {
	rec, c := env.doJSON(http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"customer_order_id": orderID,
		"amount":            amount,
		"payment_method":    method,
	})
	require.NoError(t, env.Payments.CreatePayment(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payment models.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	return payment
}

func (env *testEnv) completePayment(t *testing.T, id uint) int {
	rec, c := env.doJSON(http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(id))
	require.NoError(t, env.Payments.CompletePayment(c))
	return rec.Code
}

func TestCreatePayment(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "100.00")

	payment := env.createPayment(t, order.ID, "40.00", models.PaymentMethodCash)
	require.Equal(t, models.PaymentPending, payment.PaymentStatus)
	require.NotEmpty(t, payment.TransactionReference)
	require.NotNil(t, payment.PaymentDate)
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "100.00")

	rec, c := env.doJSON(http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"customer_order_id": order.ID,
		"amount":            "0",
		"payment_method":    models.PaymentMethodCash,
	})
	require.NoError(t, env.Payments.CreatePayment(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSON(http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"customer_order_id": order.ID,
		"amount":            "10.00",
		"payment_method":    "barter",
	})
	require.NoError(t, env.Payments.CreatePayment(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSON(http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"customer_order_id": 999,
		"amount":            "10.00",
		"payment_method":    models.PaymentMethodCash,
	})
	require.NoError(t, env.Payments.CreatePayment(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentSummaryCountsCompletedOnly(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "100.00")

	first := env.createPayment(t, order.ID, "40.00", models.PaymentMethodCash)
	second := env.createPayment(t, order.ID, "30.00", models.PaymentMethodCreditCard)
	env.createPayment(t, order.ID, "20.00", models.PaymentMethodEWallet) // stays pending

	require.Equal(t, http.StatusOK, env.completePayment(t, first.ID))
	require.Equal(t, http.StatusOK, env.completePayment(t, second.ID))

	rec, c := env.doJSON(http.MethodGet, "/", nil)
	c.SetParamNames("order_id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Payments.GetPaymentSummary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary paymentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.True(t, summary.TotalPaid.Equal(decimal.RequireFromString("70.00")), summary.TotalPaid.String())
	require.True(t, summary.RemainingBalance.Equal(decimal.RequireFromString("30.00")), summary.RemainingBalance.String())
	require.Equal(t, 2, summary.PaymentCount)
	require.False(t, summary.IsFullyPaid)
}

func TestPaymentSummaryOverpaymentIsFullyPaid(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "50.00")

	payment := env.createPayment(t, order.ID, "60.00", models.PaymentMethodBankTransfer)
	require.Equal(t, http.StatusOK, env.completePayment(t, payment.ID))

	rec, c := env.doJSON(http.MethodGet, "/", nil)
	c.SetParamNames("order_id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Payments.GetPaymentSummary(c))

	var summary paymentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.True(t, summary.RemainingBalance.Equal(decimal.RequireFromString("-10.00")))
	require.True(t, summary.IsFullyPaid)
}

func TestPaymentTransitions(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "100.00")
	payment := env.createPayment(t, order.ID, "25.00", models.PaymentMethodCash)

	// refund before completion is rejected
	rec, c := env.doJSON(http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(payment.ID))
	require.NoError(t, env.Payments.RefundPayment(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, env.completePayment(t, payment.ID))

	// completed payments cannot fail
	rec, c = env.doJSON(http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(payment.ID))
	require.NoError(t, env.Payments.FailPayment(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSON(http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(payment.ID))
	require.NoError(t, env.Payments.RefundPayment(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// refunded is terminal
	require.Equal(t, http.StatusBadRequest, env.completePayment(t, payment.ID))

	var stored models.Payment
	require.NoError(t, env.DB.First(&stored, payment.ID).Error)
	require.Equal(t, models.PaymentRefunded, stored.PaymentStatus)
}

func TestFailPaymentReasonIsResponseOnly(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "100.00")
	payment := env.createPayment(t, order.ID, "25.00", models.PaymentMethodDebitCard)

	rec, c := env.doJSON(http.MethodPut, "/?reason=card+declined", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(payment.ID))
	require.NoError(t, env.Payments.FailPayment(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "card declined", resp["reason"])

	var stored models.Payment
	require.NoError(t, env.DB.First(&stored, payment.ID).Error)
	require.Equal(t, models.PaymentFailed, stored.PaymentStatus)
}

func TestGetPaymentsByStatusRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(http.MethodGet, "/", nil)
	c.SetParamNames("status")
	c.SetParamValues("bogus")
	require.NoError(t, env.Payments.GetPaymentsByStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentDetails(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrderForPayments(t, "80.00")
	payment := env.createPayment(t, order.ID, "80.00", models.PaymentMethodCash)

	rec, c := env.doJSON(http.MethodGet, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(payment.ID))
	require.NoError(t, env.Payments.GetPaymentDetails(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var details struct {
		CustomerName string          `json:"customer_name"`
		OrderTotal   decimal.Decimal `json:"order_total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Equal(t, "Test Customer", details.CustomerName)
	require.True(t, details.OrderTotal.Equal(decimal.RequireFromString("80.00")))
}
