package adminapi

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/order"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

type placeOrderPayload struct {
	Items []order.LineInput `json:"items" validate:"dive"`
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

func registerOrderRoutes() {
	customer := webserver.RequireRoles(domain.RoleCustomer)
	webserver.ApiPOST("/orders/place", PlaceOrder, customer)
	webserver.ApiGET("/orders", ListMyOrders, customer)

	staff := webserver.RequireRoles(domain.RoleStaff, domain.RoleAdmin)
	webserver.ApiGET("/orders/all", ListAllOrders, staff)
	webserver.ApiPUT("/orders/:id", UpdateOrderStatus, staff)
}

// PlaceOrder places the listed items, or the whole cart when no items are given
func PlaceOrder(c echo.Context) error {
	var in placeOrderPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	o, err := GetAppContext(c).Orders().Place(c.Request().Context(), principal(c).Account, in.Items)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, o)
}

func ListMyOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Orders().ListForCustomer(c.Request().Context(), principal(c).ID(), page, pageSize)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

// ListAllOrders lists every order, ?status= narrows by canonical status
func ListAllOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := strings.TrimSpace(c.QueryParam("status"))
	if strings.EqualFold(status, "all") {
		status = ""
	}
	rows, total, err := GetAppContext(c).Orders().ListAll(c.Request().Context(), order.Filter{
		Status:   domain.OrderStatus(status),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func UpdateOrderStatus(c echo.Context) error {
	return changeOrderStatus(c, false)
}

func changeOrderStatus(c echo.Context, process bool) error {
	id, err := parseIDParam(c, "id", "order")
	if err != nil {
		return failErr(c, err)
	}
	var in orderStatusPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	orders := GetAppContext(c).Orders()
	change := orders.UpdateStatus
	if process {
		change = orders.Process
	}
	p := principal(c)
	o, err := change(c.Request().Context(), id, domain.OrderStatus(in.Status), p.Actor(), strings.TrimSpace(in.Note))
	if err != nil {
		return failErr(c, err)
	}
	logOperation(c, "order.status", fmt.Sprintf("order %d set to %s", o.ID, o.Status))
	return ok(c, o)
}
