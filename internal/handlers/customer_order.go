package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/models"
)

type CustomerOrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

var (
	errInsufficientStock   = errors.New("insufficient stock")
	errOrderNotCancellable = errors.New("order is not cancellable")
)

type customerOrderItemResponse struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type customerOrderResponse struct {
	ID               uint                        `json:"id"`
	CustomerID       uint                        `json:"customer_id"`
	CustomerName     string                      `json:"customer_name"`
	EmployeeID       *uint                       `json:"employee_id"`
	EmployeeUsername *string                     `json:"employee_username"`
	Status           models.CustomerOrderStatus  `json:"status"`
	TotalAmount      decimal.Decimal             `json:"total_amount"`
	Notes            string                      `json:"notes"`
	ItemCount        int                         `json:"item_count"`
	Items            []customerOrderItemResponse `json:"items"`
	CreatedAt        time.Time                   `json:"created_at"`
	CompletedAt      *time.Time                  `json:"completed_at"`
}

// Line items carry the unit price snapshot taken at creation, so totals here
// never move with the catalog.
func (h *CustomerOrderHandler) buildCustomerOrderResponse(order *models.CustomerOrder) customerOrderResponse {
	items := make([]customerOrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		items[i] = customerOrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	}

	resp := customerOrderResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.Customer.FirstName + " " + order.Customer.LastName,
		EmployeeID:   order.EmployeeID,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		Notes:        order.Notes,
		ItemCount:    len(items),
		Items:        items,
		CreatedAt:    order.CreatedAt,
		CompletedAt:  order.CompletedAt,
	}
	if order.EmployeeID != nil {
		var employee models.User
		if err := h.DB.First(&employee, *order.EmployeeID).Error; err == nil {
			resp.EmployeeUsername = &employee.Username
		}
	}
	return resp
}

func (h *CustomerOrderHandler) loadOrder(id uint) (*models.CustomerOrder, error) {
	var order models.CustomerOrder
	err := h.DB.Preload("Customer").Preload("Items.Product").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (h *CustomerOrderHandler) listOrders(c echo.Context, scope func(*gorm.DB) *gorm.DB) error {
	var orders []models.CustomerOrder
	q := h.DB.Preload("Customer").Preload("Items.Product").Order("created_at DESC")
	if scope != nil {
		q = scope(q)
	}
	if err := q.Find(&orders).Error; err != nil {
		return err
	}
	resp := make([]customerOrderResponse, len(orders))
	for i := range orders {
		resp[i] = h.buildCustomerOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerOrderHandler) GetCustomerOrders(c echo.Context) error {
	return h.listOrders(c, nil)
}

func (h *CustomerOrderHandler) GetPendingCustomerOrders(c echo.Context) error {
	return h.listOrders(c, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []models.CustomerOrderStatus{models.CustomerOrderPending, models.CustomerOrderProcessing})
	})
}

func (h *CustomerOrderHandler) GetCustomerOrdersByCustomer(c echo.Context) error {
	customerID, err := parseUintParam(c, "customer_id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid customer id")
	}
	return h.listOrders(c, func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
}

func (h *CustomerOrderHandler) GetCustomerOrder(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	order, err := h.loadOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer order not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, h.buildCustomerOrderResponse(order))
}

// CreateCustomerOrder snapshots unit prices, decrements stock and inserts the
// order in one transaction. The stock decrement is conditional
// (stock >= quantity), so two concurrent orders can never oversell: the
// second decrement matches zero rows and the whole transaction rolls back.
func (h *CustomerOrderHandler) CreateCustomerOrder(c echo.Context) error {
	var req struct {
		CustomerID uint  `json:"customer_id"`
		EmployeeID *uint `json:"employee_id"`
		Items      []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
		Notes string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if len(req.Items) == 0 {
		return detail(c, http.StatusBadRequest, "items must not be empty")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return detail(c, http.StatusBadRequest, "quantity must be greater than 0")
		}
	}

	var customer models.Customer
	if err := h.DB.First(&customer, req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer not found")
		}
		return err
	}
	if req.EmployeeID != nil {
		var employee models.User
		if err := h.DB.First(&employee, *req.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return detail(c, http.StatusNotFound, "Employee not found")
			}
			return err
		}
	}

	order := models.CustomerOrder{
		CustomerID: req.CustomerID,
		EmployeeID: req.EmployeeID,
		Status:     models.CustomerOrderPending,
		Notes:      req.Notes,
	}
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.CustomerOrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", it.ProductID, gorm.ErrRecordNotFound)
				}
				return err
			}

			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("product %q: %w", product.Name, errInsufficientStock)
			}

			items = append(items, models.CustomerOrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: product.SellingPrice,
			})
			total = total.Add(product.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		order.TotalAmount = total
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].CustomerOrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) || errors.Is(txErr, errInsufficientStock) {
			return detail(c, http.StatusBadRequest, txErr.Error())
		}
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(order.ID), map[string]interface{}{
		"type":    "customer_order_created",
		"orderID": order.ID,
	})

	created, err := h.loadOrder(order.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.buildCustomerOrderResponse(created))
}

// UpdateOrderStatus applies the transition table. "Not found" and "bad
// transition" are deliberately indistinguishable to the caller.
func (h *CustomerOrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status models.CustomerOrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if !req.Status.Valid() {
		return detail(c, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
	}

	var order models.CustomerOrder
	err = h.DB.First(&order, id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || !order.Status.CanTransitionTo(req.Status) {
		return detail(c, http.StatusBadRequest, "invalid status transition or order not found")
	}

	cols := map[string]interface{}{"status": req.Status}
	if req.Status == models.CustomerOrderCompleted {
		now := time.Now()
		cols["completed_at"] = &now
	}
	if err := h.DB.Model(&order).Updates(cols).Error; err != nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
		"type":    "customer_order_status_changed",
		"orderID": id,
		"status":  req.Status,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Order status updated to %s", req.Status)})
}

// AssignEmployee reassigns unconditionally, regardless of order status.
func (h *CustomerOrderHandler) AssignEmployee(c echo.Context) error {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	employeeID, err := parseUintParam(c, "employee_id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid employee id")
	}

	var order models.CustomerOrder
	if err := h.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer order not found")
		}
		return err
	}
	var employee models.User
	if err := h.DB.First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Employee not found")
		}
		return err
	}

	if err := h.DB.Model(&order).Update("employee_id", employeeID).Error; err != nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(orderID), map[string]interface{}{
		"type":       "customer_order_assigned",
		"orderID":    orderID,
		"employeeID": employeeID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":           fmt.Sprintf("Employee %s assigned to order %d", employee.Username, orderID),
		"employee_id":       employeeID,
		"employee_username": employee.Username,
	})
}

// CancelCustomerOrder restores stock for every line item and marks the order
// cancelled. Terminal orders are rejected.
func (h *CustomerOrderHandler) CancelCustomerOrder(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	order, err := h.loadOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer order not found")
		}
		return err
	}
	if order.Status.Terminal() {
		return detail(c, http.StatusBadRequest,
			fmt.Sprintf("cannot cancel order in status %q", order.Status))
	}

	// The status may change between the read above and the transaction, so
	// the flip is conditional; stock is restored only when this request won
	// the flip.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CustomerOrder{}).
			Where("id = ? AND status IN ?", id,
				[]models.CustomerOrderStatus{models.CustomerOrderPending, models.CustomerOrderProcessing}).
			Update("status", models.CustomerOrderCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errOrderNotCancellable
		}
		for _, it := range order.Items {
			if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(txErr, errOrderNotCancellable) {
		return detail(c, http.StatusBadRequest,
			fmt.Sprintf("cannot cancel order in status %q", order.Status))
	}
	if txErr != nil {
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
		"type":    "customer_order_cancelled",
		"orderID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Order cancelled successfully",
		"items_restored": len(order.Items),
	})
}
