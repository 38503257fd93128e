package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

type wishlistPayload struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
}

func registerWishlistRoutes() {
	customer := webserver.RequireRoles(domain.RoleCustomer)
	webserver.ApiGET("/wishlist", ListWishlist, customer)
	webserver.ApiPOST("/wishlist/add", AddToWishlist, customer)
	webserver.ApiDELETE("/wishlist/remove/:id", RemoveFromWishlist, customer)
	webserver.ApiGET("/wishlist/check/:id", CheckWishlist, customer)
}

func ListWishlist(c echo.Context) error {
	rows, err := GetAppContext(c).Wishlists().List(c.Request().Context(), principal(c).ID())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

func AddToWishlist(c echo.Context) error {
	var in wishlistPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Wishlists().Add(c.Request().Context(), principal(c).ID(), in.ProductID)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, rows)
}

func RemoveFromWishlist(c echo.Context) error {
	id, err := parseIDParam(c, "id", "product")
	if err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Wishlists().Remove(c.Request().Context(), principal(c).ID(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

func CheckWishlist(c echo.Context) error {
	id, err := parseIDParam(c, "id", "product")
	if err != nil {
		return failErr(c, err)
	}
	in, err := GetAppContext(c).Wishlists().Contains(c.Request().Context(), principal(c).ID(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]bool{"in_wishlist": in})
}
