package interceptor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	httpx "github.com/go-pledge/pledge/pkg/http"
)

// UnifiedResponseInterceptor renders a unified response envelope.
// Handlers set c.Set(consts.DETAIL, value) for data-carrying responses or
// c.Set(consts.OPERATION, "") for operations that only report success.
func UnifiedResponseInterceptor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if c.Writer.Status() >= http.StatusOK && c.Writer.Status() < http.StatusMultipleChoices {
			if detail, ok := c.Get(consts.DETAIL); ok {
				httpx.WithRepJSON(c, detail)
				return
			}

			if _, ok := c.Get(consts.OPERATION); ok {
				httpx.WithRepNotDetail(c)
			}
		}
	}
}
