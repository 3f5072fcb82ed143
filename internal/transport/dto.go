package transport

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AddToCartRequest struct {
	ProductID uint  `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// ClearCartRequest treats a missing confirm as true.
type ClearCartRequest struct {
	Confirm *bool `json:"confirm"`
}

type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type AdminUpdateOrderRequest struct {
	Status          *string `json:"status"`
	ShippingAddress *string `json:"shipping_address"`
}

type CreateProductRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	StockQuantity int64  `json:"stock_quantity"`
	CategoryID    uint   `json:"category_id"`
	IsActive      *bool  `json:"is_active"`
}

type PatchProductRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Price         *int64  `json:"price"`
	StockQuantity *int64  `json:"stock_quantity"`
	CategoryID    *uint   `json:"category_id"`
	IsActive      *bool   `json:"is_active"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
