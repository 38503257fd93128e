package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/cart"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

type cartLinePayload struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
	Quantity  int   `json:"quantity"`
}

func registerCartRoutes() {
	customer := webserver.RequireRoles(domain.RoleCustomer)
	webserver.ApiGET("/cart", GetCart, customer)
	webserver.ApiPOST("/cart/add", AddToCart, customer)
	webserver.ApiPUT("/cart/update", UpdateCartItem, customer)
	webserver.ApiPOST("/cart/merge", MergeCart, customer)
	webserver.ApiDELETE("/cart/:itemId", RemoveCartItem, customer)
}

func GetCart(c echo.Context) error {
	view, err := GetAppContext(c).Carts().Get(c.Request().Context(), principal(c).ID())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}

// AddToCart adds quantity (default 1) of a product, capped at its stock
func AddToCart(c echo.Context) error {
	var in cartLinePayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	res, err := GetAppContext(c).Carts().Add(c.Request().Context(), principal(c).ID(), in.ProductID, in.Quantity)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, res)
}

// UpdateCartItem sets the quantity of a line; zero or less removes it
func UpdateCartItem(c echo.Context) error {
	var in cartLinePayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	res, err := GetAppContext(c).Carts().UpdateQuantity(c.Request().Context(), principal(c).ID(), in.ProductID, in.Quantity)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, res)
}

func MergeCart(c echo.Context) error {
	var in cart.GuestCart
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	res, err := GetAppContext(c).Carts().Merge(c.Request().Context(), principal(c).ID(), in)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, res)
}

func RemoveCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "itemId", "cart item")
	if err != nil {
		return failErr(c, err)
	}
	view, err := GetAppContext(c).Carts().Remove(c.Request().Context(), principal(c).ID(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}
