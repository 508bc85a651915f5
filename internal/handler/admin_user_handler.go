package handler

import (
	"context"
	"net/http"
	"strconv"

	"finepharma/internal/domain/model"
	"finepharma/internal/middleware"
	"finepharma/internal/rbac"
	repo "finepharma/internal/repository"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/users 配下（adminのみ）。
type AdminUserHandler struct {
	uc     *usecase.UserUsecase
	parser middleware.TokenParser
}

func NewAdminUserHandler(uc *usecase.UserUsecase, parser middleware.TokenParser) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, parser: parser}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(
		"/admin/users",
		middleware.AuthJWT(h.parser),
		middleware.RequireAction(rbac.ActionViewUsers),
	)

	g.GET("", h.list)
	g.GET("/counts", h.counts)
	g.GET("/watch", h.watch)
	g.PATCH("/:id/role", h.updateRole)
	g.PATCH("/:id/status", h.updateStatus)

	audit := e.Group(
		"/admin/audit-logs",
		middleware.AuthJWT(h.parser),
		middleware.RequireAction(rbac.ActionViewUsers),
	)
	audit.GET("", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) counts(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.CountByRole(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateRole(c.Request().Context(), actor, id, model.Role(req.Role)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type UserStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminUserHandler) updateStatus(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UserStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), actor, id, model.UserStatus(req.Status)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	f := repo.AuditLogFilter{}
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = l
	}

	out, err := h.uc.AuditLogs(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) watch(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return streamSSE(c, func(ctx context.Context, fn func([]usecase.UserOutput)) (func(), error) {
		return h.uc.Subscribe(ctx, actor, fn)
	})
}
