package middleware

import (
	"net/http"

	"finepharma/internal/rbac"

	"github.com/labstack/echo/v4"
)

// RequireAction はcontextのロールが許可表でactionを持つか確認します。
// AuthJWTの後ろに置くこと。
func RequireAction(action rbac.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if !rbac.Can(actor.Role, action) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
