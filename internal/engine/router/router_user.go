package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
)

func (rt *Router) userRouter(r *gin.RouterGroup, auth gin.HandlerFunc) {
	userGroup := r.Group("/user", auth)
	{
		userGroup.GET("/getUserInfo", rt.getUserInfo)
	}
}

// getUserInfo returns the caller's profile, served from the redis cache when
// warm.
func (rt *Router) getUserInfo(c *gin.Context) {
	info, err := rt.Repos.User.FetchUserInfo(c.GetString("userId"))
	if err != nil {
		log.Errorf("get user info failed: %v", err)
		http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, info)
}
