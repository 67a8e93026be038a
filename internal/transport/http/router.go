package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/handlers"
	authmw "github.com/shopcore/retail-backend/internal/middleware/auth"
)

type Deps struct {
	DB                   *gorm.DB
	JWTSecret            []byte
	AuthHandler          *handlers.AuthHandler
	ProductHandler       *handlers.ProductHandler
	SupplierHandler      *handlers.SupplierHandler
	SupplierOrderHandler *handlers.SupplierOrderHandler
	CustomerOrderHandler *handlers.CustomerOrderHandler
	PaymentHandler       *handlers.PaymentHandler
	CustomerHandler      *handlers.CustomerHandler
	AdminHandler         *handlers.AdminHandler
	SearchHandler        *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")
	login := authmw.RequireLogin(d.JWTSecret)
	admin := authmw.RequireAdmin(d.JWTSecret)

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, login)

	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/low-stock", d.ProductHandler.GetLowStockProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, admin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, admin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, admin)

	suppliers := v1.Group("/suppliers")
	suppliers.GET("", d.SupplierHandler.GetSuppliers)
	suppliers.GET("/active", d.SupplierHandler.GetActiveSuppliers)
	suppliers.GET("/:id", d.SupplierHandler.GetSupplier)
	suppliers.POST("", d.SupplierHandler.CreateSupplier, admin)
	suppliers.POST("/seed", d.SupplierHandler.SeedSuppliers, admin)

	supplierOrders := v1.Group("/supplier-orders", admin)
	supplierOrders.GET("", d.SupplierOrderHandler.GetSupplierOrders)
	supplierOrders.GET("/pending", d.SupplierOrderHandler.GetPendingSupplierOrders)
	supplierOrders.GET("/:id", d.SupplierOrderHandler.GetSupplierOrder)
	supplierOrders.POST("", d.SupplierOrderHandler.CreateSupplierOrder)
	supplierOrders.POST("/bulk", d.SupplierOrderHandler.CreateBulkSupplierOrder)
	supplierOrders.PUT("/:id/arrive", d.SupplierOrderHandler.MarkArrived)
	supplierOrders.PUT("/:id/complete", d.SupplierOrderHandler.CompleteSupplierOrder)
	supplierOrders.DELETE("/:id", d.SupplierOrderHandler.CancelSupplierOrder)

	customerOrders := v1.Group("/customer-orders", login)
	customerOrders.GET("", d.CustomerOrderHandler.GetCustomerOrders)
	customerOrders.GET("/pending", d.CustomerOrderHandler.GetPendingCustomerOrders)
	customerOrders.GET("/customer/:customer_id", d.CustomerOrderHandler.GetCustomerOrdersByCustomer)
	customerOrders.GET("/:id", d.CustomerOrderHandler.GetCustomerOrder)
	customerOrders.POST("", d.CustomerOrderHandler.CreateCustomerOrder)
	customerOrders.PUT("/:id/status", d.CustomerOrderHandler.UpdateOrderStatus)
	customerOrders.PUT("/:id/assign/:employee_id", d.CustomerOrderHandler.AssignEmployee)
	customerOrders.DELETE("/:id", d.CustomerOrderHandler.CancelCustomerOrder)

	payments := v1.Group("/payments", login)
	payments.GET("", d.PaymentHandler.GetPayments)
	payments.GET("/status/:status", d.PaymentHandler.GetPaymentsByStatus)
	payments.GET("/method/:method", d.PaymentHandler.GetPaymentsByMethod)
	payments.GET("/order/:order_id", d.PaymentHandler.GetPaymentsByOrder)
	payments.GET("/order/:order_id/summary", d.PaymentHandler.GetPaymentSummary)
	payments.GET("/:id", d.PaymentHandler.GetPayment)
	payments.GET("/:id/details", d.PaymentHandler.GetPaymentDetails)
	payments.POST("", d.PaymentHandler.CreatePayment)
	payments.PUT("/:id/complete", d.PaymentHandler.CompletePayment)
	payments.PUT("/:id/fail", d.PaymentHandler.FailPayment)
	payments.PUT("/:id/refund", d.PaymentHandler.RefundPayment)

	customers := v1.Group("/customers", admin)
	customers.GET("", d.CustomerHandler.GetCustomers)
	customers.GET("/:id", d.CustomerHandler.GetCustomer)
	customers.PUT("/:id", d.CustomerHandler.UpdateCustomer)

	v1.GET("/employees", d.CustomerHandler.GetEmployees, admin)
	v1.GET("/admin/dashboard", d.AdminHandler.GetDashboard, admin)
}
