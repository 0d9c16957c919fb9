package server

import (
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/handlers"
	"example.com/resto-backoffice/backend/internal/models"
)

type routeHandlers struct {
	Auth          *handlers.AuthHandler
	Types         *handlers.ExpenseTypeHandler
	Expenses      *handlers.ExpenseHandler
	Rules         *handlers.RuleHandler
	Ingredients   *handlers.IngredientHandler
	Alerts        *handlers.AlertHandler
	Gateways      *handlers.GatewayHandler
	Staff         *handlers.StaffHandler
	Reports       *handlers.ReportHandler
	Notifications *handlers.NotificationHandler
}

type routeMiddleware struct {
	Auth            echo.MiddlewareFunc
	AuthRateLimiter echo.MiddlewareFunc
	Module          func(models.Module) echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.AuthRateLimiter)

	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me, mw.Auth)

	expenses := api.Group("/expenses", mw.Auth, mw.Module(models.ModuleExpenses))
	expenses.GET("", h.Expenses.List)
	expenses.POST("", h.Expenses.Create)
	expenses.GET("/export/csv", h.Expenses.ExportCSV)
	expenses.GET("/:id", h.Expenses.Get)
	expenses.PUT("/:id", h.Expenses.Update)
	expenses.DELETE("/:id", h.Expenses.Delete)
	expenses.POST("/:id/approve", h.Expenses.Approve)
	expenses.POST("/:id/reject", h.Expenses.Reject)

	types := api.Group("/expense-types", mw.Auth, mw.Module(models.ModuleExpenses))
	types.GET("", h.Types.List)
	types.POST("", h.Types.Create)
	types.GET("/rules/catalog", h.Rules.Catalog)
	types.GET("/:id", h.Types.Get)
	types.PUT("/:id", h.Types.Update)
	types.PATCH("/:id/active", h.Types.SetActive)
	types.DELETE("/:id", h.Types.Delete)
	types.GET("/:id/rules", h.Rules.List)
	types.POST("/:id/rules", h.Rules.Create)
	types.PUT("/:id/rules/:ruleId", h.Rules.Update)
	types.DELETE("/:id/rules/:ruleId", h.Rules.Delete)

	inventory := api.Group("/ingredients", mw.Auth, mw.Module(models.ModuleInventory))
	inventory.GET("", h.Ingredients.List)
	inventory.POST("", h.Ingredients.Create)
	inventory.GET("/export/csv", h.Ingredients.ExportCSV)
	inventory.GET("/alerts", h.Alerts.Alerts)
	inventory.GET("/predictions", h.Alerts.Predictions)
	inventory.GET("/:id", h.Ingredients.Get)
	inventory.PUT("/:id", h.Ingredients.Update)
	inventory.DELETE("/:id", h.Ingredients.Delete)
	inventory.POST("/:id/adjustments", h.Ingredients.Adjust)
	inventory.GET("/:id/adjustments", h.Ingredients.Adjustments)

	reports := api.Group("/reports", mw.Auth, mw.Module(models.ModuleReports))
	reports.GET("/overview", h.Reports.Overview)
	reports.GET("/spending-by-category", h.Reports.SpendingByCategory)
	reports.GET("/spending-by-type", h.Reports.SpendingByType)
	reports.GET("/monthly-comparison", h.Reports.MonthlyComparison)
	reports.GET("/inventory-valuation", h.Reports.Valuation)

	gateways := api.Group("/gateways", mw.Auth, mw.Module(models.ModuleSettings))
	gateways.GET("", h.Gateways.List)
	gateways.POST("", h.Gateways.Create)
	gateways.GET("/:id", h.Gateways.Get)
	gateways.PUT("/:id", h.Gateways.Update)
	gateways.DELETE("/:id", h.Gateways.Delete)

	staff := api.Group("/staff", mw.Auth, mw.Module(models.ModuleStaff))
	staff.GET("", h.Staff.List)
	staff.POST("", h.Staff.Create)
	staff.PUT("/:id", h.Staff.Update)
	staff.DELETE("/:id", h.Staff.Delete)

	notifications := api.Group("/notifications", mw.Auth)
	notifications.GET("/stream", h.Notifications.Stream)
}
