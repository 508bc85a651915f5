package middleware

import (
	"net/http"
	"strings"

	"finepharma/internal/domain/model"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
	CtxUserNameKey = "user_name" // string
)

// トークン検証はauth usecaseに委譲する
type TokenParser interface {
	ParseToken(token string) (usecase.Actor, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			actor, err := parser.ParseToken(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, actor.ID)
			c.Set(CtxUserRoleKey, string(actor.Role))
			c.Set(CtxUserNameKey, actor.Name)

			return next(c)
		}
	}
}

// ActorFromContext はAuthJWTが積んだクレームをActorに戻す
func ActorFromContext(c echo.Context) (usecase.Actor, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return usecase.Actor{}, false
	}
	role, ok := c.Get(CtxUserRoleKey).(string)
	if !ok || role == "" {
		return usecase.Actor{}, false
	}
	name, _ := c.Get(CtxUserNameKey).(string)

	return usecase.Actor{ID: id, Name: name, Role: model.Role(role)}, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
