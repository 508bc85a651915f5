package handler

import (
	"net/http"
	"strconv"

	"finepharma/internal/middleware"
	"finepharma/internal/rbac"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/products 配下。商品マスタと在庫の管理API。
type AdminProductHandler struct {
	uc     *usecase.ProductUsecase
	parser middleware.TokenParser
}

func NewAdminProductHandler(uc *usecase.ProductUsecase, parser middleware.TokenParser) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, parser: parser}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/admin/products", middleware.AuthJWT(h.parser))

	// 商品マスタはadminのみ
	g.POST("", h.create, middleware.RequireAction(rbac.ActionCreateProduct))
	g.PUT("/:id", h.update, middleware.RequireAction(rbac.ActionUpdateProduct))
	g.DELETE("/:id", h.remove, middleware.RequireAction(rbac.ActionDeleteProduct))

	// 在庫はstaffも触れる
	g.PUT("/:id/stock", h.updateStock, middleware.RequireAction(rbac.ActionUpdateStock))
	g.GET("/low-stock", h.lowStock, middleware.RequireAction(rbac.ActionUpdateStock))
}

func (h *AdminProductHandler) create(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) remove(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type StockUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

func (h *AdminProductHandler) updateStock(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStock(c.Request().Context(), actor, id, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) lowStock(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.LowStock(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
