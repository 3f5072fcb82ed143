package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// UserCancellable reports whether the owner may still cancel an order in status s.
func UserCancellable(s string) bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type User struct {
	ID           uint      `gorm:"primaryKey"                 json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	IsActive     bool      `gorm:"not null"                   json:"is_active"`
	IsAdmin      bool      `gorm:"not null"                   json:"is_admin"`
	CreatedAt    time.Time `gorm:"index"                      json:"created_at"`
	UpdatedAt    time.Time `                                  json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey"                    json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `                                     json:"description"`
	CreatedAt   time.Time `                                     json:"created_at"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey"                       json:"id"`
	Name          string    `gorm:"size:200;uniqueIndex;not null"    json:"name"`
	Description   string    `                                        json:"description"`
	Price         int64     `gorm:"not null;check:price > 0"         json:"price"`
	StockQuantity int64     `gorm:"not null;check:stock_quantity >= 0" json:"stock_quantity"`
	CategoryID    uint      `gorm:"index;not null"                   json:"category_id"`
	IsActive      bool      `gorm:"index;not null"                   json:"is_active"`
	CreatedAt     time.Time `gorm:"index"                            json:"created_at"`
	UpdatedAt     time.Time `                                        json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                              json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64     `gorm:"not null;check:quantity > 0"             json:"quantity"`
	CreatedAt time.Time `                                               json:"created_at"`
	UpdatedAt time.Time `                                               json:"updated_at"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey"        json:"id"`
	UserID          uint        `gorm:"index;not null"    json:"user_id"`
	TotalAmount     int64       `gorm:"not null"          json:"total_amount"`
	Status          string      `gorm:"size:20;index;not null" json:"status"`
	ShippingAddress string      `gorm:"size:500;not null" json:"shipping_address"`
	CreatedAt       time.Time   `gorm:"index"             json:"created_at"`
	UpdatedAt       time.Time   `                         json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	ID          uint   `gorm:"primaryKey"                 json:"id"`
	OrderID     uint   `gorm:"index;not null"             json:"order_id"`
	ProductID   uint   `gorm:"index;not null"             json:"product_id"`
	ProductName string `gorm:"size:200;not null"          json:"product_name"`
	Quantity    int64  `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   int64  `gorm:"not null"                   json:"unit_price"`
	TotalPrice  int64  `gorm:"not null"                   json:"total_price"`
}

type RevokedToken struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&RevokedToken{},
	}
}
