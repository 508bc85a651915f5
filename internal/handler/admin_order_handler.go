package handler

import (
	"context"
	"net/http"
	"strconv"

	"finepharma/internal/middleware"
	"finepharma/internal/rbac"
	repo "finepharma/internal/repository"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/orders 配下（admin/staff）。
type AdminOrderHandler struct {
	uc     *usecase.OrderUsecase
	parser middleware.TokenParser
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase, parser middleware.TokenParser) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, parser: parser}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(
		"/admin/orders",
		middleware.AuthJWT(h.parser),
		middleware.RequireAction(rbac.ActionViewAllOrders),
	)

	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.GET("/watch", h.watch)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	f := repo.OrderListFilter{Status: c.QueryParam("status")}
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		f.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = l
	}
	if v := c.QueryParam("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid customer_id"})
		}
		f.CustomerID = &id
	}

	out, err := h.uc.ListAll(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), actor, id, req.Status); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminOrderHandler) stats(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Statistics(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 全注文のSSE購読
func (h *AdminOrderHandler) watch(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return streamSSE(c, func(ctx context.Context, fn func([]usecase.OrderOutput)) (func(), error) {
		return h.uc.SubscribeAll(ctx, actor, fn)
	})
}
