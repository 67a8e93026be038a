package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/es"
	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/logging"
	"github.com/shopcore/retail-backend/internal/models"
	"github.com/shopcore/retail-backend/internal/service/search"
	"github.com/shopcore/retail-backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
}

type productResponse struct {
	models.Product
	SupplierName string `json:"supplier_name"`
}

// ProductUpdate lists every field a PUT may patch. Only non-nil fields are
// applied; column names never come from the caller.
type ProductUpdate struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SupplierID    *uint            `json:"supplier_id"`
	Stock         *int             `json:"stock"`
	ReorderLevel  *int             `json:"reorder_level"`
	ReorderAmount *int             `json:"reorder_amount"`
	Category      *string          `json:"category"`
	ImageURL      *string          `json:"image_url"`
}

func (u *ProductUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.SellingPrice != nil {
		cols["selling_price"] = *u.SellingPrice
	}
	if u.PurchasePrice != nil {
		cols["purchase_price"] = *u.PurchasePrice
	}
	if u.SupplierID != nil {
		cols["supplier_id"] = *u.SupplierID
	}
	if u.Stock != nil {
		cols["stock"] = *u.Stock
	}
	if u.ReorderLevel != nil {
		cols["reorder_level"] = *u.ReorderLevel
	}
	if u.ReorderAmount != nil {
		cols["reorder_amount"] = *u.ReorderAmount
	}
	if u.Category != nil {
		cols["category"] = *u.Category
	}
	if u.ImageURL != nil {
		cols["image_url"] = *u.ImageURL
	}
	return cols
}

func (u *ProductUpdate) validate() error {
	if u.SellingPrice != nil && !u.SellingPrice.IsPositive() {
		return errors.New("selling_price must be greater than 0")
	}
	if u.PurchasePrice != nil && !u.PurchasePrice.IsPositive() {
		return errors.New("purchase_price must be greater than 0")
	}
	if u.Stock != nil && *u.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

func (h *ProductHandler) indexProduct(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, es.ProductIndex, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return err
	}

	var items []models.Product
	if err := h.DB.Preload("Supplier").Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return err
	}

	resp := make([]productResponse, len(items))
	for i, p := range items {
		resp[i] = productResponse{Product: p, SupplierName: p.Supplier.Name}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": resp,
		"meta": map[string]interface{}{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// GetLowStockProducts lists products at or below their reorder level,
// candidates for a replenishment order.
func (h *ProductHandler) GetLowStockProducts(c echo.Context) error {
	var items []models.Product
	if err := h.DB.Preload("Supplier").
		Where("stock <= reorder_level").
		Order("stock ASC").
		Find(&items).Error; err != nil {
		return err
	}

	resp := make([]productResponse, len(items))
	for i, p := range items {
		resp[i] = productResponse{Product: p, SupplierName: p.Supplier.Name}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.Preload("Supplier").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Product not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, productResponse{Product: product, SupplierName: product.Supplier.Name})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		SellingPrice  decimal.Decimal `json:"selling_price"`
		PurchasePrice decimal.Decimal `json:"purchase_price"`
		SupplierID    uint            `json:"supplier_id"`
		Stock         int             `json:"stock"`
		ReorderLevel  int             `json:"reorder_level"`
		ReorderAmount int             `json:"reorder_amount"`
		Category      string          `json:"category"`
		ImageURL      string          `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Category == "" {
		return detail(c, http.StatusBadRequest, "name and category are required")
	}
	if !req.SellingPrice.IsPositive() || !req.PurchasePrice.IsPositive() {
		return detail(c, http.StatusBadRequest, "prices must be greater than 0")
	}
	if req.Stock < 0 {
		return detail(c, http.StatusBadRequest, "stock must not be negative")
	}

	var supplier models.Supplier
	if err := h.DB.First(&supplier, req.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusBadRequest, "Supplier not found")
		}
		return err
	}

	if req.ReorderLevel == 0 {
		req.ReorderLevel = 50
	}
	if req.ReorderAmount == 0 {
		req.ReorderAmount = 100
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		SellingPrice:  req.SellingPrice,
		PurchasePrice: req.PurchasePrice,
		SupplierID:    req.SupplierID,
		Stock:         req.Stock,
		ReorderLevel:  req.ReorderLevel,
		ReorderAmount: req.ReorderAmount,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return err
	}

	h.indexProduct(c, &product)
	publishEvent(c, h.Producer, events.TopicProductEvents, fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	product.Supplier = supplier
	return c.JSON(http.StatusCreated, productResponse{Product: product, SupplierName: supplier.Name})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var req ProductUpdate
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Product not found")
		}
		return err
	}

	if req.SupplierID != nil {
		var supplier models.Supplier
		if err := h.DB.First(&supplier, *req.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return detail(c, http.StatusBadRequest, "Supplier not found")
			}
			return err
		}
	}

	cols := req.columns()
	if len(cols) > 0 {
		if err := h.DB.Model(&product).Updates(cols).Error; err != nil {
			return err
		}
	}

	if err := h.DB.Preload("Supplier").First(&product, id).Error; err != nil {
		return err
	}

	h.indexProduct(c, &product)
	publishEvent(c, h.Producer, events.TopicProductEvents, fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, productResponse{Product: product, SupplierName: product.Supplier.Name})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Product not found")
		}
		return err
	}

	// A product with incoming stock cannot be removed.
	var pending int64
	if err := h.DB.Model(&models.SupplierOrderItem{}).
		Joins("JOIN supplier_orders ON supplier_orders.id = supplier_order_items.supplier_order_id").
		Where("supplier_order_items.product_id = ? AND supplier_orders.status IN ?",
			id, []models.SupplierOrderStatus{models.SupplierOrderProcessing, models.SupplierOrderArrived}).
		Count(&pending).Error; err != nil {
		return err
	}
	if pending > 0 {
		return detail(c, http.StatusBadRequest,
			"Cannot delete product while there are incoming supplier orders (processing or arrived).")
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return err
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := search.DeleteProduct(ctx, h.ES, es.ProductIndex, id); err != nil {
			logging.FromContext(c.Request().Context()).Error("es delete error", "product_id", id, "error", err)
		}
	}
	publishEvent(c, h.Producer, events.TopicProductEvents, fmt.Sprint(id), map[string]interface{}{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
