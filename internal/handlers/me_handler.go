package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agencydesk/internal/authz"
	"agencydesk/internal/middleware"
)

type meResponse struct {
	UserID  string     `json:"user_id"`
	Role    authz.Role `json:"role"`
	Staff   bool       `json:"staff"`
	Landing string     `json:"landing"`
}

// @Summary      Current session
// @Description  Who is calling and where their role lands after login.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func Me(c *gin.Context) {
	role := middleware.RoleOf(c)
	c.JSON(http.StatusOK, meResponse{
		UserID:  middleware.UserID(c),
		Role:    role,
		Staff:   authz.IsStaff(role),
		Landing: authz.LandingPath(role),
	})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
