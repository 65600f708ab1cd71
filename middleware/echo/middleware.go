package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/middleware"
)

// ValidateJSON parses request JSON via schema s, stores Parsed[T] in context
// on success, or returns 400 with Issues when validation fails.
func ValidateJSON[T any](s skematic.Schema[T], opt skematic.ParseOpt) echo.MiddlewareFunc {
	if opt.Strictness.OnDuplicateKey == 0 && !opt.Presence.Collect {
		opt = middleware.DefaultParseOpt()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			pv, err := skematic.ParseFromWithMeta(c.Request().Context(), s, skematic.JSONReader(c.Request().Body), opt)
			if err != nil {
				if iss, ok := skematic.AsIssues(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			ctx := middleware.ContextWithParsed(c.Request().Context(), pv)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetParsed fetches Parsed[T] from echo.Context.
func GetParsed[T any](c echo.Context) (skematic.Parsed[T], bool) {
	return middleware.ParsedFromContext[T](c.Request().Context())
}
