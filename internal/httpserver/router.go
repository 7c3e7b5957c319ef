package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	JWTSecret      []byte

	AllowGuestCheckout bool
	Ready              func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewBearerMiddleware(d.JWTSecret)

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "time": time.Now().UTC()})
	})

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/profile", d.AuthHandler.Profile, authMW.RequireAuth)
	auth.PUT("/profile", d.AuthHandler.UpdateProfile, authMW.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts, authMW.OptionalAuth)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, authMW.RequireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, authMW.RequireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, authMW.RequireAdmin)

	checkout := authMW.RequireAuth
	if d.AllowGuestCheckout {
		checkout = authMW.OptionalAuth
	}

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, checkout)
	orders.GET("", d.OrderHandler.MyOrders, authMW.RequireAuth)
	orders.GET("/admin/all", d.OrderHandler.AllOrders, authMW.RequireAdmin)
	orders.GET("/:id", d.OrderHandler.GetOrder, authMW.RequireAuth)
	orders.PUT("/:id", d.OrderHandler.UpdateOrder, authMW.RequireAdmin)
}
