package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/models"
)

type SupplierHandler struct {
	DB *gorm.DB
}

type supplierBrief struct {
	ID       uint   `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// seedSuppliers is the fixed demo dataset; Seed inserts only codes that are
// not present yet.
var seedSuppliers = []models.Supplier{
	{Code: "NWT", Name: "Northwind", FullName: "Northwind Trading Co.", Description: "General wholesale distribution.", Address: "12 Harbor Way, Rotterdam", ContactEmail: "sales@northwind.example", ContactPhone: "+31-10-555-0101"},
	{Code: "ACM", Name: "Acme Foods", FullName: "Acme Food Supplies Ltd.", Description: "Packaged food and beverages.", Address: "88 Mill Road, Leeds", ContactEmail: "orders@acmefoods.example", ContactPhone: "+44-113-555-0144"},
	{Code: "GLB", Name: "Globex", FullName: "Globex Household Goods", Description: "Household and cleaning products.", Address: "7 Industrial Park, Lyon", ContactEmail: "contact@globex.example", ContactPhone: "+33-4-555-0178"},
	{Code: "STR", Name: "Stark Electronics", FullName: "Stark Electronics GmbH", Description: "Consumer electronics and accessories.", Address: "3 Ringstrasse, Munich", ContactEmail: "b2b@stark.example", ContactPhone: "+49-89-555-0122"},
	{Code: "PKW", Name: "Pakwell", FullName: "Pakwell Packaging Works", Description: "Packaging material and disposables.", Address: "41 Canal Street, Gdansk", ContactEmail: "office@pakwell.example", ContactPhone: "+48-58-555-0190"},
	{Code: "FRS", Name: "FreshLine", FullName: "FreshLine Produce B.V.", Description: "Fresh produce and dairy.", Address: "5 Marktplein, Utrecht", ContactEmail: "supply@freshline.example", ContactPhone: "+31-30-555-0136"},
}

func (h *SupplierHandler) GetSuppliers(c echo.Context) error {
	var suppliers []models.Supplier
	if err := h.DB.Order("id ASC").Find(&suppliers).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, suppliers)
}

func (h *SupplierHandler) GetActiveSuppliers(c echo.Context) error {
	var suppliers []models.Supplier
	if err := h.DB.Order("code ASC").Find(&suppliers).Error; err != nil {
		return err
	}
	brief := make([]supplierBrief, len(suppliers))
	for i, s := range suppliers {
		brief[i] = supplierBrief{ID: s.ID, Code: s.Code, Name: s.Name, FullName: s.FullName}
	}
	return c.JSON(http.StatusOK, brief)
}

func (h *SupplierHandler) GetSupplier(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var supplier models.Supplier
	if err := h.DB.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Supplier not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) CreateSupplier(c echo.Context) error {
	var req struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		FullName     string `json:"full_name"`
		Description  string `json:"description"`
		Address      string `json:"address"`
		ContactEmail string `json:"contact_email"`
		ContactPhone string `json:"contact_phone"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if req.Code == "" || req.Name == "" || req.FullName == "" || req.Address == "" {
		return detail(c, http.StatusBadRequest, "code, name, full_name and address are required")
	}

	var existing models.Supplier
	err := h.DB.Where("code = ?", req.Code).First(&existing).Error
	if err == nil {
		return detail(c, http.StatusBadRequest, "supplier code already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	supplier := models.Supplier{
		Code:         req.Code,
		Name:         req.Name,
		FullName:     req.FullName,
		Description:  req.Description,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if err := h.DB.Create(&supplier).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) SeedSuppliers(c echo.Context) error {
	created := 0
	for _, s := range seedSuppliers {
		var existing models.Supplier
		err := h.DB.Where("code = ?", s.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		supplier := s
		if err := h.DB.Create(&supplier).Error; err != nil {
			return err
		}
		created++
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "suppliers seeded", "created": created})
}
