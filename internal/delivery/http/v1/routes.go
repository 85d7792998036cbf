package v1

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/delivery/http/middleware"
)

// Routes holds every v1 handler. Upload may be nil when R2 is not configured.
type Routes struct {
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Catalog  *CatalogHandler
	Orders   *OrderHandler
	Account  *AccountHandler
	Auth     *AuthHandler
	Config   *ConfigHandler
	Upload   *UploadHandler
}

// Register mounts the API on mux. Session and identity middleware wrap the
// mux itself, so handlers here only add the access checks they need.
func (rt *Routes) Register(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Metrics(h))
	}
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Metrics(middleware.RequireAuth(h)))
	}

	// Config
	handle("GET /api/v1/config/enums", rt.Config.GetEnums)

	// Auth session
	handle("POST /api/v1/auth/session", rt.Auth.CreateSession)
	handle("DELETE /api/v1/auth/session", rt.Auth.DeleteSession)
	handle("GET /api/v1/auth/me", rt.Auth.Me)

	// Cart
	handle("GET /api/v1/cart", rt.Cart.GetCart)
	handle("DELETE /api/v1/cart", rt.Cart.Clear)
	handle("POST /api/v1/cart/items", rt.Cart.AddItem)
	handle("PUT /api/v1/cart/items", rt.Cart.UpdateItem)
	handle("DELETE /api/v1/cart/items/{productId}", rt.Cart.RemoveItem)
	handle("POST /api/v1/cart/coupon", rt.Cart.ApplyCoupon)
	protected("POST /api/v1/checkout", rt.Orders.Checkout)

	// Wishlist
	handle("GET /api/v1/wishlist", rt.Wishlist.GetWishlist)
	handle("POST /api/v1/wishlist/items", rt.Wishlist.AddItem)
	handle("DELETE /api/v1/wishlist/items/{productId}", rt.Wishlist.RemoveItem)
	handle("POST /api/v1/wishlist/items/{productId}/move", rt.Wishlist.MoveToCart)
	handle("GET /api/v1/wishlist/contains/{productId}", rt.Wishlist.Contains)

	// Catalog
	handle("GET /api/v1/listings/{kind}", rt.Catalog.ApplyFilter)
	handle("POST /api/v1/listings/{kind}/next", rt.Catalog.LoadNext)
	handle("POST /api/v1/listings/{kind}/retry", rt.Catalog.Retry)
	handle("GET /api/v1/products/{id}", rt.Catalog.GetProduct)
	handle("GET /api/v1/promotions", rt.Catalog.Promotions)

	// Account
	protected("GET /api/v1/orders", rt.Orders.MyOrders)
	protected("POST /api/v1/user/addresses", rt.Account.SaveAddress)
	protected("DELETE /api/v1/user/addresses/{id}", rt.Account.DeleteAddress)
	protected("POST /api/v1/products/{id}/reviews", rt.Account.AddReview)
	protected("POST /api/v1/support/tickets", rt.Account.OpenTicket)

	// Shop owners
	if rt.Upload != nil {
		shopOnly := middleware.RequireRole(auth.RoleShopOwner, auth.RoleAdmin)
		mux.Handle("POST /api/v1/shop/uploads", middleware.Metrics(shopOnly(http.HandlerFunc(rt.Upload.UploadImage))))
	}
}
