package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/handler/api"
	"shuttlecourt/internal/handler/middleware"
	"shuttlecourt/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth     *api.AuthHandler
	Booking  *api.BookingHandler
	Checkout *api.CheckoutHandler
	Admin    *api.AdminHandler
	Sweep    *api.SweepHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me, Mw: []gin.HandlerFunc{authMiddleware.RequireAuth()}},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			staffOnly := authMiddleware.RequireRoleAtLeast(user.RoleStaff)
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Booking.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Booking.ListByCourtAndDay},
				{Method: http.MethodGet, Path: "/mine", Handler: h.Booking.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.GetByID},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Booking.Cancel},
				{Method: http.MethodGet, Path: "/:id/order", Handler: h.Checkout.GetOrder},
				{Method: http.MethodPost, Path: "/:id/items", Handler: h.Booking.AddItem, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodDelete, Path: "/:id/items/:lineID", Handler: h.Booking.RemoveItem, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodPost, Path: "/:id/services", Handler: h.Booking.AddService, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodDelete, Path: "/:id/services/:lineID", Handler: h.Booking.RemoveService, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodPost, Path: "/:id/checkout", Handler: h.Checkout.Settle, Mw: []gin.HandlerFunc{staffOnly}},
			})
		}

		occurrences := apiGroup.Group("/occurrences")
		occurrences.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleStaff))
		{
			addRoutes(occurrences, []route{
				{Method: http.MethodPost, Path: "/:id/check-in", Handler: h.Booking.CheckIn},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleStaff))
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Checkout.ConfirmPayment},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Checkout.CancelPayment},
			})
		}

		sweeps := apiGroup.Group("/sweeps")
		sweeps.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleStaff))
		{
			addRoutes(sweeps, []route{
				{Method: http.MethodPost, Path: "/start-due", Handler: h.Sweep.StartDue},
				{Method: http.MethodPost, Path: "/expire-overdue", Handler: h.Sweep.ExpireOverdue},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/courts", Handler: h.Admin.CreateCourt},
				{Method: http.MethodPost, Path: "/courts/:id/rules", Handler: h.Admin.CreatePricingRule},
				{Method: http.MethodPost, Path: "/vouchers", Handler: h.Admin.CreateVoucher},
				{Method: http.MethodPost, Path: "/users", Handler: h.Admin.CreateUser},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
