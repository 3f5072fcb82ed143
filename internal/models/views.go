package models

import "time"

type ProductView struct {
	Product
	CategoryName string `json:"category_name"`
}

type CartLineView struct {
	ID           uint      `json:"id"`
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice int64     `json:"product_price"`
	Quantity     int64     `json:"quantity"`
	TotalPrice   int64     `json:"total_price"`
	CreatedAt    time.Time `json:"created_at"`
}

type CartView struct {
	Items       []CartLineView `json:"items"`
	TotalItems  int64          `json:"total_items"`
	TotalAmount int64          `json:"total_amount"`
}

// CheckoutLine is a cart line joined with the live product row.
type CheckoutLine struct {
	CartItemID    uint
	ProductID     uint
	ProductName   string
	Price         int64
	StockQuantity int64
	IsActive      bool
	Quantity      int64
}

type OrderSummary struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	TotalAmount     int64     `json:"total_amount"`
	Status          string    `json:"status"`
	ShippingAddress string    `json:"shipping_address"`
	ItemsCount      int64     `json:"items_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProductSales struct {
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	QuantitySold int64  `json:"quantity_sold"`
	Revenue      int64  `json:"revenue"`
}

type UnsoldProduct struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int64  `json:"stock_quantity"`
}

type CategoryRevenue struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Revenue      int64  `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
