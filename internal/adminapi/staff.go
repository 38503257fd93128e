package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

type staffPayload struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password"`
}

type staffUpdatePayload struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,max=255"`
	Password *string `json:"password"`
}

type staffAccessPayload struct {
	Active *bool `json:"active" validate:"required"`
}

func registerStaffRoutes() {
	staff := webserver.RequireRoles(domain.RoleStaff, domain.RoleAdmin)
	webserver.ApiGET("/staff/dashboard/stats", DashboardStats, staff)
	webserver.ApiGET("/staff/dashboard/recent-orders", RecentOrders, staff)
	webserver.ApiGET("/staff/orders", ListAllOrders, staff)
	webserver.ApiPUT("/staff/orders/:id/process", ProcessOrder, staff)
	webserver.ApiGET("/staff/sales", SalesReport, staff)

	admin := webserver.RequireRoles(domain.RoleAdmin)
	webserver.ApiGET("/staff/members", ListStaff, admin)
	webserver.ApiPOST("/staff/members", CreateStaff, admin)
	webserver.ApiPUT("/staff/members/:id", UpdateStaff, admin)
	webserver.ApiDELETE("/staff/members/:id", DeleteStaff, admin)
	webserver.ApiPATCH("/staff/members/:id/access", SetStaffAccess, admin)
}

func DashboardStats(c echo.Context) error {
	stats, err := GetAppContext(c).Orders().Dashboard(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, stats)
}

// RecentOrders returns the latest ?limit= orders (default 10)
func RecentOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := GetAppContext(c).Orders().Recent(c.Request().Context(), limit)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

// ProcessOrder is the staff status change; completion re-checks the products
func ProcessOrder(c echo.Context) error {
	return changeOrderStatus(c, true)
}

func ListStaff(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Accounts().List(c.Request().Context(), domain.RoleStaff, page, pageSize)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func CreateStaff(c echo.Context) error {
	var in staffPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	a, err := GetAppContext(c).Accounts().CreateStaff(c.Request().Context(), account.StaffInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return failErr(c, err)
	}
	logOperation(c, "staff.create", "created staff "+a.Email)
	return created(c, a)
}

func UpdateStaff(c echo.Context) error {
	id, err := parseIDParam(c, "id", "staff")
	if err != nil {
		return failErr(c, err)
	}
	var in staffUpdatePayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	a, err := GetAppContext(c).Accounts().UpdateStaff(c.Request().Context(), id, account.StaffUpdate{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return failErr(c, err)
	}
	logOperation(c, "staff.update", "updated staff "+a.Email)
	return ok(c, a)
}

func DeleteStaff(c echo.Context) error {
	id, err := parseIDParam(c, "id", "staff")
	if err != nil {
		return failErr(c, err)
	}
	if err := GetAppContext(c).Accounts().DeleteStaff(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	logOperation(c, "staff.delete", "deleted staff "+strconv.FormatInt(id, 10))
	return c.NoContent(http.StatusNoContent)
}

// SetStaffAccess enables or disables a staff login
func SetStaffAccess(c echo.Context) error {
	id, err := parseIDParam(c, "id", "staff")
	if err != nil {
		return failErr(c, err)
	}
	var in staffAccessPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	a, err := GetAppContext(c).Accounts().SetActive(c.Request().Context(), id, *in.Active)
	if err != nil {
		return failErr(c, err)
	}
	logOperation(c, "staff.access", a.Email+" set to "+a.Status)
	return ok(c, a)
}
