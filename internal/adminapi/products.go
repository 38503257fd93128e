package adminapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/catalog"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/storage"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

// productPayload JSON form of a product write; absent fields stay unchanged
type productPayload struct {
	Name              *string          `json:"name" validate:"omitempty,max=200"`
	Price             *decimal.Decimal `json:"price"`
	Mrp               *decimal.Decimal `json:"mrp"`
	Discount          *float64         `json:"discount"`
	Tag               *string          `json:"tag" validate:"omitempty,max=64"`
	Stock             *int             `json:"stock"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	Description       *string          `json:"description"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	Image             *string          `json:"image" validate:"omitempty,max=1024"`
}

func (p productPayload) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:              p.Name,
		Price:             p.Price,
		Mrp:               p.Mrp,
		Discount:          p.Discount,
		Tag:               p.Tag,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		Description:       p.Description,
		Category:          p.Category,
		Image:             p.Image,
	}
}

func registerProductRoutes() {
	webserver.PubGET("/products", ListProducts)
	webserver.PubGET("/products/low-stock", LowStockProducts)
	webserver.PubGET("/products/categories", ListCategories)
	webserver.PubGET("/products/:id", GetProduct)

	admin := webserver.RequireRoles(domain.RoleAdmin)
	webserver.ApiPOST("/products", CreateProduct, admin)
	webserver.ApiPUT("/products/:id", UpdateProduct, admin)
	webserver.ApiDELETE("/products/:id", DeleteProduct, admin)
}

// ListProducts supports ?category=&q=&sort=&order=&page=&pageSize=
func ListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Catalog().List(c.Request().Context(), catalog.Filter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Order:    strings.TrimSpace(c.QueryParam("order")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func GetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "product")
	if err != nil {
		return failErr(c, err)
	}
	p, err := GetAppContext(c).Catalog().Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

// LowStockProducts lists products with stock at or below ?threshold= (default 5)
func LowStockProducts(c echo.Context) error {
	threshold, _ := strconv.Atoi(c.QueryParam("threshold"))
	rows, err := GetAppContext(c).Catalog().LowStock(c.Request().Context(), threshold)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

func ListCategories(c echo.Context) error {
	rows, err := GetAppContext(c).Catalog().Categories(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

func CreateProduct(c echo.Context) error {
	in, uploaded, err := readProductInput(c)
	if err != nil {
		return failErr(c, err)
	}
	ctx := c.Request().Context()
	p, err := GetAppContext(c).Catalog().Create(ctx, in)
	if err != nil {
		discardImage(ctx, uploaded)
		return failErr(c, err)
	}
	logOperation(c, "product.create", "created product "+p.Name)
	return created(c, p)
}

func UpdateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "product")
	if err != nil {
		return failErr(c, err)
	}
	ctx := c.Request().Context()
	products := GetAppContext(c).Catalog()
	current, err := products.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	in, uploaded, err := readProductInput(c)
	if err != nil {
		return failErr(c, err)
	}
	p, err := products.Update(ctx, id, in)
	if err != nil {
		discardImage(ctx, uploaded)
		return failErr(c, err)
	}
	if current.Image != p.Image {
		discardImage(ctx, current.Image)
	}
	logOperation(c, "product.update", "updated product "+p.Name)
	return ok(c, p)
}

func DeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "product")
	if err != nil {
		return failErr(c, err)
	}
	ctx := c.Request().Context()
	products := GetAppContext(c).Catalog()
	p, err := products.Get(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if err := products.Delete(ctx, id); err != nil {
		return failErr(c, err)
	}
	discardImage(ctx, p.Image)
	logOperation(c, "product.delete", "deleted product "+p.Name)
	return c.NoContent(http.StatusNoContent)
}

// readProductInput accepts JSON or a multipart form with an optional image
// file. The returned reference names an image stored by this request.
func readProductInput(c echo.Context) (catalog.ProductInput, string, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) && !strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		var payload productPayload
		if err := bind(c, &payload); err != nil {
			return catalog.ProductInput{}, "", err
		}
		return payload.input(), "", nil
	}

	form, err := c.FormParams()
	if err != nil {
		return catalog.ProductInput{}, "", domain.Validation("Invalid form data")
	}
	in, err := formInput(form)
	if err != nil {
		return in, "", err
	}

	fh, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return in, "", nil
	} else if err != nil {
		return in, "", domain.Validation("Invalid image upload")
	}
	if fh.Size > storage.MaxImageSize {
		return in, "", domain.Validation("Image exceeds %d MB", storage.MaxImageSize>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return in, "", domain.Validation("Invalid image upload")
	}
	defer src.Close()
	ref, err := GetAppContext(c).Images().Save(c.Request().Context(), fh.Filename, src)
	if err != nil {
		return in, "", err
	}
	in.Image = &ref
	return in, ref, nil
}

func formInput(form url.Values) (catalog.ProductInput, error) {
	var in catalog.ProductInput
	str := func(key string) *string {
		vals, ok := form[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}
	in.Name = str("name")
	in.Tag = str("tag")
	in.Description = str("description")
	in.Category = str("category")
	in.Image = str("image")

	for key, dst := range map[string]**decimal.Decimal{"price": &in.Price, "mrp": &in.Mrp} {
		if raw := str(key); raw != nil && strings.TrimSpace(*raw) != "" {
			d, err := decimal.NewFromString(strings.TrimSpace(*raw))
			if err != nil {
				return in, domain.Validation("Invalid %s", key)
			}
			*dst = &d
		}
	}
	if raw := str("discount"); raw != nil && strings.TrimSpace(*raw) != "" {
		v, err := cast.ToFloat64E(strings.TrimSpace(*raw))
		if err != nil {
			return in, domain.Validation("Invalid discount")
		}
		in.Discount = &v
	}
	for key, dst := range map[string]**int{"stock": &in.Stock, "low_stock_threshold": &in.LowStockThreshold} {
		if raw := str(key); raw != nil && strings.TrimSpace(*raw) != "" {
			v, err := strconv.Atoi(strings.TrimSpace(*raw))
			if err != nil {
				return in, domain.Validation("Invalid %s", key)
			}
			*dst = &v
		}
	}
	return in, nil
}

// discardImage removes an image this service stored; foreign references are kept.
func discardImage(ctx context.Context, ref string) {
	name := storage.NameOf(ref)
	if name == "" {
		return
	}
	if err := appCtx.Images().Delete(ctx, name); err != nil {
		zap.L().Warn("delete image failed", zap.String("namespace", "adminapi"), zap.String("image", name), zap.Error(err))
	}
}
