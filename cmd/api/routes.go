package main

import (
	"database/sql"
	"net/http"
	"time"

	"demand-platform/internal/auth"
	"demand-platform/internal/httpapi"
	"demand-platform/internal/rbac"
	"demand-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireCompany())
	{
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			cid, _ := auth.CompanyID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{
				"user_id": uid, "company_id": cid,
				"squad_id": auth.SquadID(c.Request.Context()), "role": role,
			})
		})

		demands := v1.Group("/demands")
		{
			demands.POST("", h.CreateDemand)
			demands.GET("", h.ListDemands)
			demands.GET("/:demand_id", h.GetDemand)
			demands.PATCH("/:demand_id",
				rbac.RequireAnyRole(rbac.RoleRequester, rbac.RoleManager, rbac.RoleAdmin),
				h.UpdateDemand)
			demands.POST("/:demand_id/owner",
				rbac.RequireAnyRole(rbac.RoleManager, rbac.RoleAdmin),
				h.AssignOwner)
			demands.POST("/:demand_id/daily-updates", h.LogDailyUpdate)

			// Status transitions. A verdict needing confirmation returns 409;
			// the client re-submits with confirmed=true.
			demands.GET("/:demand_id/transition", h.PreviewTransition)
			demands.POST("/:demand_id/transition",
				rbac.RequireAnyRole(rbac.RoleRequester, rbac.RoleManager, rbac.RoleTechLead, rbac.RoleAdmin),
				h.ChangeStatus)

			// Approvals
			demands.GET("/:demand_id/approvals", h.ListApprovals)
			demands.POST("/:demand_id/approvals",
				rbac.RequireAnyRole(rbac.RoleManager, rbac.RoleCommitteeMember, rbac.RoleTechLead),
				h.Vote)

			// History and versions
			demands.GET("/:demand_id/history", h.ListHistory)
			demands.GET("/:demand_id/versions", h.ListVersions)

			// Phases
			demands.GET("/:demand_id/phases", h.ListPhases)
			demands.POST("/:demand_id/phases",
				rbac.RequireAnyRole(rbac.RoleTechLead, rbac.RoleAdmin),
				h.AddPhase)
			demands.PATCH("/:demand_id/phases/:phase_id",
				rbac.RequireAnyRole(rbac.RoleTechLead, rbac.RoleAdmin),
				h.UpdatePhase)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleManager, rbac.RoleAdmin, rbac.RoleAuditor))
		{
			reports.GET("/portfolio", h.PortfolioSummary)
			reports.GET("/demands/:demand_id/approval-progress", h.ApprovalProgress)
		}
	}
}
