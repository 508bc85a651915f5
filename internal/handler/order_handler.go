package handler

import (
	"context"
	"net/http"
	"strconv"

	"finepharma/internal/middleware"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders 配下。認証必須（顧客は自分の注文だけ）。
type OrderHandler struct {
	uc     *usecase.OrderUsecase
	parser middleware.TokenParser
}

func NewOrderHandler(uc *usecase.OrderUsecase, parser middleware.TokenParser) *OrderHandler {
	return &OrderHandler{uc: uc, parser: parser}
}

type OrderCreateRequest struct {
	Items []usecase.OrderLineInput `json:"items"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/orders", middleware.AuthJWT(h.parser))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/watch", h.watch)
	g.GET("/:id", h.detail)
	g.GET("/by-number/:orderId", h.detailByNumber)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Place(c.Request().Context(), actor, req.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListByCustomer(c.Request().Context(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetByID(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detailByNumber(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetByOrderID(c.Request().Context(), actor, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 自分の注文一覧のSSE購読
func (h *OrderHandler) watch(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return streamSSE(c, func(ctx context.Context, fn func([]usecase.OrderOutput)) (func(), error) {
		return h.uc.SubscribeCustomer(ctx, actor.ID, fn)
	})
}
