package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anoixa/art-gallery/api"
	"github.com/anoixa/art-gallery/api/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

// RequireAuth 要求携带有效的 Bearer 令牌
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondError(c, http.StatusUnauthorized, "No Authorization request header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondError(c, http.StatusUnauthorized, "Authorization field format error")
			c.Abort()
			return
		}

		if err := authenticate(c, parts[1]); err != nil {
			common.RespondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth 公共读取接口用的认证中间件
// 有令牌则解析身份，无令牌或令牌无效时按匿名继续，不中断请求。
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				_ = authenticate(c, parts[1])
			}
		}
		c.Next()
	}
}

// authenticate 解析令牌并将用户身份写入 context
func authenticate(c *gin.Context, token string) error {
	claims, err := api.Parse(token)
	if err != nil {
		return errors.New("invalid or expired token")
	}

	userID, err := claimUint(claims, "user_id")
	if err != nil {
		return err
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return errors.New("role not found in token claims")
	}

	c.Set(ContextUserIDKey, userID)
	c.Set(ContextUsernameKey, username)
	c.Set(ContextRoleKey, role)

	return nil
}

// claimUint JWT 数字声明经 JSON 解码后是 float64
func claimUint(claims jwt.MapClaims, key string) (uint, error) {
	value, ok := claims[key]
	if !ok {
		return 0, errors.New(key + " not found in token claims")
	}
	number, ok := value.(float64)
	if !ok || number < 0 {
		return 0, errors.New("invalid " + key + " in token claims")
	}
	return uint(number), nil
}
