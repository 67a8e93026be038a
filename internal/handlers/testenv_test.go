package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/config"
	"github.com/shopcore/retail-backend/internal/hash"
	"github.com/shopcore/retail-backend/internal/models"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth           *AuthHandler
	Products       *ProductHandler
	Suppliers      *SupplierHandler
	SupplierOrders *SupplierOrderHandler
	CustomerOrders *CustomerOrderHandler
	Payments       *PaymentHandler
	Customers      *CustomerHandler
	Admin          *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))

	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")

	return &testEnv{
		T:              t,
		E:              echo.New(),
		DB:             db,
		Auth:           &AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		Products:       &ProductHandler{DB: db},
		Suppliers:      &SupplierHandler{DB: db},
		SupplierOrders: &SupplierOrderHandler{DB: db},
		CustomerOrders: &CustomerOrderHandler{DB: db},
		Payments:       &PaymentHandler{DB: db},
		Customers:      &CustomerHandler{DB: db},
		Admin:          &AdminHandler{DB: db},
	}
}

func (env *testEnv) doJSON(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createSupplier(code, name string) models.Supplier {
	supplier := models.Supplier{
		Code:     code,
		Name:     name,
		FullName: name + " Ltd.",
		Address:  "1 Test Street",
	}
	require.NoError(env.T, env.DB.Create(&supplier).Error)
	return supplier
}

func (env *testEnv) createProduct(supplierID uint, name string, stock int, selling, purchase string) models.Product {
	product := models.Product{
		Name:          name,
		SellingPrice:  decimal.RequireFromString(selling),
		PurchasePrice: decimal.RequireFromString(purchase),
		SupplierID:    supplierID,
		Stock:         stock,
		ReorderLevel:  5,
		ReorderAmount: 20,
		Category:      "test",
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return product
}

func (env *testEnv) createUser(username string, role models.UserRole) models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)
	user := models.User{Username: username, PasswordHash: pwHash, Role: role}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createCustomer(username string) models.Customer {
	user := env.createUser(username, models.RoleCustomer)
	customer := models.Customer{
		FirstName: "Test",
		LastName:  "Customer",
		UserID:    user.ID,
	}
	require.NoError(env.T, env.DB.Create(&customer).Error)
	return customer
}

func (env *testEnv) productStock(id uint) int {
	var product models.Product
	require.NoError(env.T, env.DB.First(&product, id).Error)
	return product.Stock
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
