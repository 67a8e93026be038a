package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         UserRole  `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// Customer carries the profile fields for a user with the customer role,
// 1:1 with User.
type Customer struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName   string     `gorm:"size:50;not null"         json:"first_name"`
	LastName    string     `gorm:"size:50;not null"         json:"last_name"`
	Email       string     `gorm:"size:255"                 json:"email"`
	PhoneNumber string     `gorm:"size:20"                  json:"phone_number"`
	Address     string     `gorm:"size:255"                 json:"address"`
	City        string     `gorm:"size:100"                 json:"city"`
	PostalCode  string     `gorm:"size:20"                  json:"postal_code"`
	BirthDate   *time.Time `json:"birth_date"`
	UserID      uint       `gorm:"uniqueIndex;not null"     json:"user_id"`
	User        User       `gorm:"foreignKey:UserID"        json:"-"`
}

type Supplier struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Code         string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"size:100;index;not null"    json:"name"`
	FullName     string    `gorm:"size:200;not null"          json:"full_name"`
	Description  string    `json:"description"`
	Address      string    `gorm:"size:300;not null"          json:"address"`
	ContactEmail string    `gorm:"size:100"                   json:"contact_email"`
	ContactPhone string    `gorm:"size:50"                    json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name          string          `gorm:"size:255;not null"         json:"name"`
	Description   string          `json:"description"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"selling_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"purchase_price"`
	SupplierID    uint            `gorm:"index;not null"            json:"supplier_id"`
	Supplier      Supplier        `gorm:"foreignKey:SupplierID"     json:"-"`
	Stock         int             `gorm:"default:0"                 json:"stock"`
	ReorderLevel  int             `gorm:"default:50"                json:"reorder_level"`
	ReorderAmount int             `gorm:"default:100"               json:"reorder_amount"`
	Category      string          `gorm:"size:100;not null"         json:"category"`
	ImageURL      string          `gorm:"size:500"                  json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type SupplierOrder struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	SupplierID  uint                `gorm:"index;not null"           json:"supplier_id"`
	Supplier    Supplier            `gorm:"foreignKey:SupplierID"    json:"-"`
	EmployeeID  *uint               `json:"employee_id"`
	Status      SupplierOrderStatus `gorm:"size:20;not null"         json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at"`
	Items       []SupplierOrderItem `gorm:"foreignKey:SupplierOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// SupplierOrderItem is a weak entity keyed by (supplier_order_id, product_id).
type SupplierOrderItem struct {
	SupplierOrderID uint    `gorm:"primaryKey"            json:"supplier_order_id"`
	ProductID       uint    `gorm:"primaryKey"            json:"product_id"`
	Quantity        int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Product         Product `gorm:"foreignKey:ProductID"  json:"-"`
}

type CustomerOrder struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID  uint                `gorm:"index;not null"           json:"customer_id"`
	Customer    Customer            `gorm:"foreignKey:CustomerID"    json:"-"`
	EmployeeID  *uint               `json:"employee_id"`
	Status      CustomerOrderStatus `gorm:"size:20;not null"         json:"status"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Notes       string              `json:"notes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at"`
	Items       []CustomerOrderItem `gorm:"foreignKey:CustomerOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// CustomerOrderItem carries the unit price snapshot taken at order creation;
// it never changes after insert, even if the catalog price does.
type CustomerOrderItem struct {
	CustomerOrderID uint            `gorm:"primaryKey"           json:"customer_order_id"`
	ProductID       uint            `gorm:"primaryKey"           json:"product_id"`
	Quantity        int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Product         Product         `gorm:"foreignKey:ProductID" json:"-"`
}

type Payment struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerOrderID      uint            `gorm:"index;not null"           json:"customer_order_id"`
	CustomerOrder        CustomerOrder   `gorm:"foreignKey:CustomerOrderID" json:"-"`
	Amount               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod        PaymentMethod   `gorm:"size:20;not null"         json:"payment_method"`
	PaymentStatus        PaymentStatus   `gorm:"size:20;not null"         json:"payment_status"`
	TransactionReference string          `gorm:"size:100"                 json:"transaction_reference"`
	PaymentDate          *time.Time      `json:"payment_date"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
