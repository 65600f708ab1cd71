package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/middleware"
)

// ValidateJSON parses the incoming JSON using schema s with opt (or
// DefaultParseOpt when zero value), stores Parsed[T] in the context, and on
// validation failure returns 400 with the Issues payload.
func ValidateJSON[T any](s skematic.Schema[T], opt skematic.ParseOpt) gin.HandlerFunc {
	// merge defaults if caller passed zero
	if opt.Strictness.OnDuplicateKey == 0 && !opt.Presence.Collect {
		opt = middleware.DefaultParseOpt()
	}
	return func(c *gin.Context) {
		pv, err := skematic.ParseFromWithMeta(c.Request.Context(), s, skematic.JSONReader(c.Request.Body), opt)
		if err != nil {
			if iss, ok := skematic.AsIssues(err); ok {
				c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				c.Abort()
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithParsed(c.Request.Context(), pv))
		c.Next()
	}
}

// GetParsed fetches Parsed[T] from gin.Context.
func GetParsed[T any](c *gin.Context) (skematic.Parsed[T], bool) {
	return middleware.ParsedFromContext[T](c.Request.Context())
}
