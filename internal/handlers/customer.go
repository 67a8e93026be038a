package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/models"
)

type CustomerHandler struct {
	DB *gorm.DB
}

type customerResponse struct {
	models.Customer
	Username string `json:"username"`
}

func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	var customers []models.Customer
	if err := h.DB.Preload("User").Order("id ASC").Find(&customers).Error; err != nil {
		return err
	}
	resp := make([]customerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = customerResponse{Customer: cust, Username: cust.User.Username}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}
	var customer models.Customer
	if err := h.DB.Preload("User").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, customerResponse{Customer: customer, Username: customer.User.Username})
}

// CustomerUpdate lists every profile field a PUT may patch. Only non-nil
// fields are applied; column names never come from the caller.
type CustomerUpdate struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Email       *string    `json:"email"`
	PhoneNumber *string    `json:"phone_number"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	PostalCode  *string    `json:"postal_code"`
	BirthDate   *time.Time `json:"birth_date"`
}

func (u *CustomerUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.PhoneNumber != nil {
		cols["phone_number"] = *u.PhoneNumber
	}
	if u.Address != nil {
		cols["address"] = *u.Address
	}
	if u.City != nil {
		cols["city"] = *u.City
	}
	if u.PostalCode != nil {
		cols["postal_code"] = *u.PostalCode
	}
	if u.BirthDate != nil {
		cols["birth_date"] = *u.BirthDate
	}
	return cols
}

func (u *CustomerUpdate) validate() error {
	if u.FirstName != nil && *u.FirstName == "" {
		return errors.New("first_name must not be empty")
	}
	if u.LastName != nil && *u.LastName == "" {
		return errors.New("last_name must not be empty")
	}
	return nil
}

func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid id")
	}

	var req CustomerUpdate
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(c, http.StatusNotFound, "Customer not found")
		}
		return err
	}

	cols := req.columns()
	if len(cols) > 0 {
		if err := h.DB.Model(&customer).Updates(cols).Error; err != nil {
			return err
		}
	}

	if err := h.DB.Preload("User").First(&customer, id).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerResponse{Customer: customer, Username: customer.User.Username})
}

// GetEmployees lists users with the admin role; they act as order-handling
// employees.
func (h *CustomerHandler) GetEmployees(c echo.Context) error {
	var employees []models.User
	if err := h.DB.Where("role = ?", models.RoleAdmin).Order("id ASC").Find(&employees).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employees)
}
