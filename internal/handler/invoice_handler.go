package handler

import (
	"context"
	"net/http"
	"strconv"

	"finepharma/internal/middleware"
	"finepharma/internal/rbac"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 顧客向け /invoices と管理向け /admin/invoices。
type InvoiceHandler struct {
	uc     *usecase.InvoiceUsecase
	parser middleware.TokenParser
}

func NewInvoiceHandler(uc *usecase.InvoiceUsecase, parser middleware.TokenParser) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, parser: parser}
}

func (h *InvoiceHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/invoices", middleware.AuthJWT(h.parser))
	g.GET("", h.listMine)
	g.GET("/watch", h.watchMine)
	g.GET("/:id", h.detail)
	g.GET("/by-number/:invoiceId", h.detailByNumber)
	g.GET("/by-order/:orderId", h.detailByOrder)

	admin := e.Group(
		"/admin/invoices",
		middleware.AuthJWT(h.parser),
		middleware.RequireAction(rbac.ActionViewAllInvoices),
	)
	admin.POST("", h.generate, middleware.RequireAction(rbac.ActionGenerateInvoice))
	admin.GET("", h.listAll)
	admin.GET("/stats", h.stats)
	admin.GET("/watch", h.watchAll)
}

func (h *InvoiceHandler) generate(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.GenerateInvoiceInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Generate(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *InvoiceHandler) listMine(c echo.Context) error {
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

func (h *InvoiceHandler) listAll(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListAll(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) detail(c echo.Context) error {
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

func (h *InvoiceHandler) detailByNumber(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetByInvoiceID(c.Request().Context(), actor, c.Param("invoiceId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) detailByOrder(c echo.Context) error {
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

func (h *InvoiceHandler) stats(c echo.Context) error {
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

func (h *InvoiceHandler) watchMine(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return streamSSE(c, func(ctx context.Context, fn func([]usecase.InvoiceOutput)) (func(), error) {
		return h.uc.SubscribeCustomer(ctx, actor.ID, fn)
	})
}

func (h *InvoiceHandler) watchAll(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return streamSSE(c, func(ctx context.Context, fn func([]usecase.InvoiceOutput)) (func(), error) {
		return h.uc.SubscribeAll(ctx, actor, fn)
	})
}
