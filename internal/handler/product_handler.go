package handler

import (
	"context"
	"net/http"
	"strconv"

	"finepharma/internal/middleware"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API（認証なし＝顧客と同じ可視性）
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/watch", h.watch)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	// 認証済みならそのロールの可視性で（admin/staffはinactiveも見える）
	actor, _ := middleware.ActorFromContext(c)

	out, err := h.uc.List(c.Request().Context(), actor, usecase.ProductListInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// カタログのSSE購読（匿名可）
func (h *ProductHandler) watch(c echo.Context) error {
	actor, _ := middleware.ActorFromContext(c)

	return streamSSE(c, func(ctx context.Context, fn func(usecase.ProductListOutput)) (func(), error) {
		return h.uc.Subscribe(ctx, actor, usecase.ProductListInput{Limit: 100}, fn)
	})
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	actor, _ := middleware.ActorFromContext(c)

	p, err := h.uc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
