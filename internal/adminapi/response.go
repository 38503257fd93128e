package adminapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/app"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

var appCtx app.AppContext

// ListResponse paginated list envelope
type ListResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Init registers every API route against the global web server.
func Init(ctx app.AppContext) {
	appCtx = ctx
	registerHealthRoutes()
	registerAuthRoutes()
	registerProductRoutes()
	registerCartRoutes()
	registerWishlistRoutes()
	registerOrderRoutes()
	registerStaffRoutes()
	registerSalesRoutes()
}

// GetAppContext returns the application the handlers run against.
func GetAppContext(c echo.Context) app.AppContext {
	return appCtx
}

// GetDB returns a request scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return appCtx.DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return webserver.Fail(c, status, code, message, details)
}

func failErr(c echo.Context, err error) error {
	return webserver.FailErr(c, err)
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return ok(c, ListResponse{Data: data, Total: total, Page: page, PageSize: pageSize})
}

// parsePagination reads page and pageSize (or perPage) with sane bounds.
func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	raw := c.QueryParam("pageSize")
	if raw == "" {
		raw = c.QueryParam("perPage")
	}
	pageSize, _ := strconv.Atoi(raw)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name, label string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("Invalid %s ID", label)
	}
	return id, nil
}

// bind decodes the body into v and runs its validate tags.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return domain.Validation("Invalid request body")
	}
	if err := c.Validate(v); err != nil {
		fields := webserver.FieldErrors(err)
		if len(fields) == 0 {
			return domain.Validation("Invalid request body")
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return domain.Validation("Invalid value for %s", strings.Join(names, ", "))
	}
	return nil
}

func principal(c echo.Context) *auth.Principal {
	return webserver.PrincipalOf(c)
}

// logOperation records a staff or admin mutation in sys_opr_log.
func logOperation(c echo.Context, action, desc string) {
	p := principal(c)
	if p == nil {
		return
	}
	entry := domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprID:     p.ID(),
		OprName:   p.Account.Name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	if err := GetDB(c).Create(&entry).Error; err != nil {
		zap.L().Warn("record operation failed", zap.String("namespace", "adminapi"), zap.String("action", action), zap.Error(err))
	}
}
