package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/sales"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerSalesRoutes() {
	staff := webserver.RequireRoles(domain.RoleStaff, domain.RoleAdmin)
	webserver.ApiGET("/sales", SalesReport, staff)
	webserver.ApiGET("/sales/csv", SalesCSV, staff)
	webserver.ApiGET("/sales/history/all", SalesHistory, staff)
	webserver.ApiGET("/sales/history/csv", SalesHistoryCSV, staff)
	webserver.ApiGET("/sales/history/xlsx", SalesHistoryXLSX, staff)
}

func salesFilter(c echo.Context) (sales.Filter, error) {
	return sales.ParseFilter(c.QueryParam)
}

// SalesReport supports ?status=&from=&to=&category=&top=
func SalesReport(c echo.Context) error {
	f, err := salesFilter(c)
	if err != nil {
		return failErr(c, err)
	}
	report, err := GetAppContext(c).Sales().Report(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, report)
}

// SalesCSV exports one row per product
func SalesCSV(c echo.Context) error {
	f, err := salesFilter(c)
	if err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Sales().ProductRows(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return attachment(c, "sales", "csv", "text/csv; charset=utf-8", func(w io.Writer) error {
		return sales.WriteCSV(w, rows)
	})
}

// SalesHistory lists one row per order line
func SalesHistory(c echo.Context) error {
	f, err := salesFilter(c)
	if err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Sales().Rows(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

func SalesHistoryCSV(c echo.Context) error {
	f, err := salesFilter(c)
	if err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Sales().Rows(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return attachment(c, "sales-history", "csv", "text/csv; charset=utf-8", func(w io.Writer) error {
		return sales.WriteCSV(w, rows)
	})
}

func SalesHistoryXLSX(c echo.Context) error {
	f, err := salesFilter(c)
	if err != nil {
		return failErr(c, err)
	}
	rows, err := GetAppContext(c).Sales().Rows(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return attachment(c, "sales-history", "xlsx", mimeXLSX, func(w io.Writer) error {
		return sales.WriteXLSX(w, rows)
	})
}

// attachment renders into memory first so a failed export still gets a JSON error.
func attachment(c echo.Context, name, ext, contentType string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return failErr(c, domain.Internal(err, "Failed to export sales"))
	}
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().Format("20060102"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
