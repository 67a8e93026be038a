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

type SupplierOrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type supplierOrderItemResponse struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type supplierOrderResponse struct {
	ID               uint                        `json:"id"`
	SupplierID       uint                        `json:"supplier_id"`
	SupplierName     string                      `json:"supplier_name"`
	EmployeeID       *uint                       `json:"employee_id"`
	EmployeeUsername *string                     `json:"employee_username"`
	Status           models.SupplierOrderStatus  `json:"status"`
	TotalCost        decimal.Decimal             `json:"total_cost"`
	ItemCount        int                         `json:"item_count"`
	Items            []supplierOrderItemResponse `json:"items"`
	CreatedAt        time.Time                   `json:"created_at"`
	CompletedAt      *time.Time                  `json:"completed_at"`
}

// buildSupplierOrderResponse prices items at the product's current
// purchase_price; total cost is always derived, never stored, so it drifts
// when the catalog price changes before completion.
func (h *SupplierOrderHandler) buildSupplierOrderResponse(order *models.SupplierOrder) supplierOrderResponse {
	items := make([]supplierOrderItemResponse, len(order.Items))
	total := decimal.Zero
	for i, it := range order.Items {
		lineTotal := it.Product.PurchasePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items[i] = supplierOrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.PurchasePrice,
			LineTotal:   lineTotal,
		}
		total = total.Add(lineTotal)
	}

	resp := supplierOrderResponse{
		ID:           order.ID,
		SupplierID:   order.SupplierID,
		SupplierName: order.Supplier.Name,
		EmployeeID:   order.EmployeeID,
		Status:       order.Status,
		TotalCost:    total,
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

func (h *SupplierOrderHandler) loadOrder(id uint) (*models.SupplierOrder, error) {
	var order models.SupplierOrder
	err := h.DB.Preload("Supplier").Preload("Items.Product").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (h *SupplierOrderHandler) GetSupplierOrders(c echo.Context) error {
	var orders []models.SupplierOrder
	if err := h.DB.Preload("Supplier").Preload("Items.Product").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return err
	}
	resp := make([]supplierOrderResponse, len(orders))
	for i := range orders {
		resp[i] = h.buildSupplierOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SupplierOrderHandler) GetPendingSupplierOrders(c echo.Context) error {
	var orders []models.SupplierOrder
	if err := h.DB.Preload("Supplier").Preload("Items.Product").
		Where("status IN ?", []models.SupplierOrderStatus{models.SupplierOrderProcessing, models.SupplierOrderArrived}).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return err
	}
	resp := make([]supplierOrderResponse, len(orders))
	for i := range orders {
		resp[i] = h.buildSupplierOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SupplierOrderHandler) GetSupplierOrder(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	order, err := h.loadOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Supplier order not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, h.buildSupplierOrderResponse(order))
}

// CreateSupplierOrder creates a single-product replenishment order; the
// supplier is resolved from the product.
func (h *SupplierOrderHandler) CreateSupplierOrder(c echo.Context) error {
	var req struct {
		ProductID  uint  `json:"product_id"`
		Quantity   int   `json:"quantity"`
		EmployeeID *uint `json:"employee_id"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if req.Quantity <= 0 {
		return detail(c, http.StatusBadRequest, "quantity must be greater than 0")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Product not found")
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

	order := models.SupplierOrder{
		SupplierID: product.SupplierID,
		EmployeeID: req.EmployeeID,
		Status:     models.SupplierOrderProcessing,
	}
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		item := models.SupplierOrderItem{
			SupplierOrderID: order.ID,
			ProductID:       product.ID,
			Quantity:        req.Quantity,
		}
		return tx.Create(&item).Error
	})
	if txErr != nil {
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(order.ID), map[string]interface{}{
		"type":    "supplier_order_created",
		"orderID": order.ID,
	})

	created, err := h.loadOrder(order.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.buildSupplierOrderResponse(created))
}

// CreateBulkSupplierOrder groups the requested items by the supplier owning
// each product and creates one order per group. Items referencing a missing
// product are silently skipped.
func (h *SupplierOrderHandler) CreateBulkSupplierOrder(c echo.Context) error {
	var req struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
		EmployeeID *uint `json:"employee_id"`
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

	if req.EmployeeID != nil {
		var employee models.User
		if err := h.DB.First(&employee, *req.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return detail(c, http.StatusNotFound, "Employee not found")
			}
			return err
		}
	}

	type pendingItem struct {
		productID uint
		quantity  int
	}
	supplierItems := map[uint][]pendingItem{}
	supplierIDs := []uint{}
	for _, it := range req.Items {
		var product models.Product
		if err := h.DB.First(&product, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if _, seen := supplierItems[product.SupplierID]; !seen {
			supplierIDs = append(supplierIDs, product.SupplierID)
		}
		supplierItems[product.SupplierID] = append(supplierItems[product.SupplierID], pendingItem{product.ID, it.Quantity})
	}

	var orderIDs []uint
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, supplierID := range supplierIDs {
			order := models.SupplierOrder{
				SupplierID: supplierID,
				EmployeeID: req.EmployeeID,
				Status:     models.SupplierOrderProcessing,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			for _, pi := range supplierItems[supplierID] {
				item := models.SupplierOrderItem{
					SupplierOrderID: order.ID,
					ProductID:       pi.productID,
					Quantity:        pi.quantity,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
			orderIDs = append(orderIDs, order.ID)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	resp := make([]supplierOrderResponse, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, err := h.loadOrder(id)
		if err != nil {
			return err
		}
		resp = append(resp, h.buildSupplierOrderResponse(order))
		publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
			"type":    "supplier_order_created",
			"orderID": id,
		})
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *SupplierOrderHandler) MarkArrived(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var order models.SupplierOrder
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Supplier order not found")
		}
		return err
	}
	if !order.Status.CanTransitionTo(models.SupplierOrderArrived) {
		return detail(c, http.StatusBadRequest,
			fmt.Sprintf("cannot mark order as arrived from status %q", order.Status))
	}

	if err := h.DB.Model(&order).Update("status", models.SupplierOrderArrived).Error; err != nil {
		return err
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
		"type":    "supplier_order_arrived",
		"orderID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier order marked as arrived"})
}

type stockUpdate struct {
	ProductName   string `json:"product_name"`
	QuantityAdded int    `json:"quantity_added"`
	NewStock      int    `json:"new_stock"`
}

// CompleteSupplierOrder applies every line item's quantity to product stock,
// then removes the order and its items. No completed row is persisted.
func (h *SupplierOrderHandler) CompleteSupplierOrder(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	order, err := h.loadOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Supplier order not found")
		}
		return err
	}
	if len(order.Items) == 0 {
		return detail(c, http.StatusBadRequest, "supplier order has no items")
	}
	if !order.Status.CanTransitionTo(models.SupplierOrderCompleted) {
		return detail(c, http.StatusBadRequest,
			fmt.Sprintf("cannot complete order from status %q", order.Status))
	}

	updates := make([]stockUpdate, 0, len(order.Items))
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, it := range order.Items {
			if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
			// Read the stock back: the preloaded value may be stale under
			// concurrent writes.
			var fresh models.Product
			if err := tx.Select("stock").First(&fresh, it.ProductID).Error; err != nil {
				return err
			}
			updates = append(updates, stockUpdate{
				ProductName:   it.Product.Name,
				QuantityAdded: it.Quantity,
				NewStock:      fresh.Stock,
			})
		}
		if err := tx.Where("supplier_order_id = ?", id).Delete(&models.SupplierOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SupplierOrder{}, id).Error
	})
	if txErr != nil {
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
		"type":    "supplier_order_completed",
		"orderID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":       fmt.Sprintf("Order completed and removed. Updated stock for %d products.", len(updates)),
		"stock_updates": updates,
	})
}

func (h *SupplierOrderHandler) CancelSupplierOrder(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var order models.SupplierOrder
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Supplier order not found")
		}
		return err
	}
	if order.Status == models.SupplierOrderCompleted {
		return detail(c, http.StatusBadRequest, "cannot cancel a completed order")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_order_id = ?", id).Delete(&models.SupplierOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SupplierOrder{}, id).Error
	})
	if txErr != nil {
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(id), map[string]interface{}{
		"type":    "supplier_order_cancelled",
		"orderID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier order cancelled"})
}
