package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

// WithRepErr returns an error result including the request path.
func WithRepErr(c *gin.Context, code int, errMsg string, path string) {
	c.JSON(http.StatusOK, ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithRepErrMsg returns an error result including the request path.
func WithRepErrMsg(c *gin.Context, code int, errMsg string, path string) {
	c.JSON(http.StatusOK, ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithRepErrNotData returns an error result without a path field.
func WithRepErrNotData(c *gin.Context, errMsg string) {
	c.JSON(http.StatusOK, ResponseErr{
		ErrCode: Failed.Code,
		ErrMsg:  errMsg,
	})
}
