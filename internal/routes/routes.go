package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agencydesk/internal/authz"
	"agencydesk/internal/handlers"
	"agencydesk/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	dealHandler *handlers.DealHandler,
	reportHandler *handlers.ReportHandler,
	financeHandler *handlers.FinanceHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", handlers.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	r.GET("/me", handlers.Me)

	// DEALS
	deals := r.Group("/deals", middleware.RequireRoles(authz.RoleAdmin))
	{
		deals.POST("", dealHandler.Create)
		deals.GET("", dealHandler.List)
		deals.GET("/board", dealHandler.Board)
		deals.GET("/board/ws", dealHandler.BoardSocket)
		deals.GET("/:id", dealHandler.GetByID)
		deals.PUT("/:id", dealHandler.Update)
		deals.POST("/:id/stage", dealHandler.ChangeStage)
	}

	// REPORTS
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleAdmin))
	{
		reports.GET("/summary", reportHandler.GetSummary)
		reports.GET("/won-monthly", reportHandler.MonthlyWon)
		reports.GET("/finance", reportHandler.Finance)
		reports.GET("/board.pdf", reportHandler.BoardPDF)
	}

	// FINANCE
	finance := r.Group("/finance", middleware.RequireRoles(authz.RoleAdmin))
	{
		finance.GET("/plans", financeHandler.ListPlans)
		finance.PUT("/plans/:month", financeHandler.SavePlan)
		finance.GET("/costs", financeHandler.ListCosts)
		finance.POST("/costs", financeHandler.AddCost)
	}

	return r
}
