package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_failed", "invalid body", err)
	}

	order, err := h.Svc.CreateOrder(ctx, callerFrom(c), req)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"order": order})
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListMyOrders(ctx, caller.UserID)
	if err != nil {
		return fail(l, "my_orders_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHTTP) AllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.all_orders")

	from, err := util.ParseTimeBound(c.QueryParam("from"), false)
	if err != nil {
		return badRequest(l, "all_orders_failed", "from must be a date", err)
	}
	to, err := util.ParseTimeBound(c.QueryParam("to"), true)
	if err != nil {
		return badRequest(l, "all_orders_failed", "to must be a date", err)
	}

	orders, err := h.Svc.ListAllOrders(ctx, transport.OrderQuery{
		Status: c.QueryParam("status"),
		Query:  c.QueryParam("q"),
		From:   from,
		To:     to,
	})
	if err != nil {
		return fail(l, "all_orders_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		l.Warn("get_order_failed", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}

	order, err := h.Svc.GetOrder(ctx, caller, id)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"order": order})
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := parseID(c)
	if err != nil {
		l.Warn("update_order_failed", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_failed", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, req)
	if err != nil {
		return fail(l, "update_order_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"order": order})
}
