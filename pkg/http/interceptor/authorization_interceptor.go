package interceptor

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/http/jwt"
	"github.com/go-pledge/pledge/pkg/log"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthorizationInterceptor validates the bearer token on protected routes.
// Token issuance lives outside this service; only verification and the
// redis presence check happen here.
func AuthorizationInterceptor(secretKey, tokenPrefix string, client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		aToken := c.Request.Header.Get("Authorization")
		if aToken == "" {
			http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Request.URL.Path)
			c.Abort()
			return
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Request.URL.Path)
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Request.URL.Path)
				c.Abort()
				return
			}
			http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Request.URL.Path)
			log.Errorf("parse token failed: %v", err)
			c.Abort()
			return
		}

		if client != nil && !isTokenExist(c, client, tokenPrefix+claims.UserId) {
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserId)
		c.Next()
	}
}

// isTokenExist checks whether the token is still registered in redis.
func isTokenExist(c *gin.Context, client *redis.Client, key string) bool {
	exists, err := client.Exists(context.Background(), key).Result()
	if err != nil {
		http.WithRepErrMsg(c, http.InternalError.Code, http.InternalError.Msg, c.Request.URL.Path)
		log.Errorf("redis check token exists failed: %v", err)
		c.Abort()
		return false
	}
	if exists == 0 {
		http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Request.URL.Path)
		c.Abort()
		return false
	}
	return true
}
