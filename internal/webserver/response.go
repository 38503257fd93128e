package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Fail writes an error response.
func Fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorBody{Error: code, Message: message, Details: details})
}

// FailErr writes err using its domain kind. Unclassified errors are logged
// and reported as internal.
func FailErr(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		zap.L().Error("request failed",
			zap.String("namespace", "webserver"),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return Fail(c, kind.HTTPStatus(), string(kind), domain.MessageOf(err), nil)
}

var statusCodes = map[int]string{
	http.StatusBadRequest:            string(domain.KindValidation),
	http.StatusUnauthorized:          string(domain.KindUnauthenticated),
	http.StatusForbidden:             string(domain.KindForbidden),
	http.StatusNotFound:              string(domain.KindNotFound),
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "RATE_LIMITED",
}

// httpErrorHandler renders errors that escape handlers in the same shape.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if e, ok := err.(*echo.HTTPError); ok {
		he = e
	} else {
		_ = FailErr(c, err)
		return
	}
	code, ok := statusCodes[he.Code]
	if !ok {
		code = string(domain.KindInternal)
	}
	msg, _ := he.Message.(string)
	if msg == "" {
		msg = http.StatusText(he.Code)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = Fail(c, he.Code, code, msg, nil)
}
