package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/models"
)

type AdminHandler struct {
	DB *gorm.DB
}

type dashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalAdmins    int64 `json:"total_admins"`
	TotalCustomers int64 `json:"total_customers"`
}

// GetDashboard returns the headline counts for the admin landing page.
func (h *AdminHandler) GetDashboard(c echo.Context) error {
	var stats dashboardStats
	if err := h.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).
		Count(&stats.TotalAdmins).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
