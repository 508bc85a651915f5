package server

import (
	"finepharma/internal/config"
	"finepharma/internal/handler"
	"finepharma/internal/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Invoice      *handler.InvoiceHandler
	AdminUser    *handler.AdminUserHandler
}

// New は全ルートを登録済みのechoを返す
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLog())
	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	e.Use(limiter.Middleware())

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e)
	h.Order.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e)
	h.Invoice.RegisterRoutes(e)
	h.AdminUser.RegisterRoutes(e)

	return e
}

func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
