// Copyright 2025 Pledge Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/conf"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/pkg/ctx"
	httpx "github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/http/interceptor"
	"github.com/go-pledge/pledge/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Http  *httpx.Http
	Ctx   *ctx.Context
	Repos *repo.Repositories
	Conf  *conf.AppConfig
}

func NewRouter(httpConf *httpx.Http, ctx *ctx.Context, repos *repo.Repositories, appConf *conf.AppConfig) *Router {
	return &Router{
		Http:  httpConf,
		Ctx:   ctx,
		Repos: repos,
		Conf:  appConf,
	}
}

func (rt *Router) Router() *gin.Engine {

	gin.SetMode(rt.Http.Mode)

	r := gin.New()

	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		fmt.Printf("[Pledge] %-6s %-25s --> %s (%d handlers) \n", httpMethod, absolutePath, handlerName, nuHandlers)
	}

	// cors interceptor
	r.Use(interceptor.CorsInterceptor())

	// panic recover
	r.Use(interceptor.ExceptionInterceptor)

	// unified response interceptor
	r.Use(interceptor.UnifiedResponseInterceptor())

	if rt.Http.AccessLog {
		r.Use(gin.LoggerWithFormatter(httpx.AccessLogFormat))
	}

	if rt.Http.PProf {
		r.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	if rt.Http.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetVersion())
	})

	// engine router, internal api router
	engine := r.Group(rt.Http.InternalContextPath)
	{
		rt.routerGroup(engine)
	}

	return r
}

func (rt *Router) routerGroup(r *gin.RouterGroup) {

	tokenPrefix := rt.Http.Auth.RedisKeyPrefix
	if tokenPrefix == "" {
		tokenPrefix = consts.TokenKeyPrefix
	}
	auth := interceptor.AuthorizationInterceptor(rt.Http.Auth.SecretKey, tokenPrefix, rt.Ctx.GetRedis())

	rt.userRouter(r, auth)
	rt.inviteRouter(r, auth)
	rt.organizationRouter(r, auth)
	rt.repositoryRouter(r, auth)
}
