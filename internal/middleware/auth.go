package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"coursepay/internal/config"
)

type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and puts user_id / is_admin on the echo
// context. An unauthenticated request gets a 401 carrying the login URL and
// the path it was trying to reach, so the client can send the user to log in
// and come straight back without losing in-progress state.
func Auth(cfg *config.Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return loginRequired(c, cfg)
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				return loginRequired(c, cfg)
			}

			c.Set("user_id", claims.Subject)
			c.Set("is_admin", claims.IsAdmin)
			return next(c)
		}
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, _ := c.Get("is_admin").(bool)
			if !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

func loginRequired(c echo.Context, cfg *config.Auth) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error":      "authentication required",
		"loginUrl":   cfg.LoginURL,
		"returnPath": c.Request().URL.RequestURI(),
	})
}

func UserID(c echo.Context) string {
	userID, _ := c.Get("user_id").(string)
	return userID
}
