package interceptor

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
)

// ExceptionInterceptor recovers from panics in handlers.
func ExceptionInterceptor(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			http.WithRepErr(c, http.InternalError.Code, errorToString(err), c.Request.URL.Path)
			log.Errorf("panic: %v", err)
			c.Abort()
		}
	}()
	c.Next()
}

func errorToString(err interface{}) string {
	switch v := err.(type) {
	case http.ResponseErr:
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	case error:
		// never leak stack traces to clients
		log.Errorf("panic: %v\n%s", v, debug.Stack())
		return http.InternalError.Msg
	default:
		if errMsg, ok := v.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	}
}
