package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agencydesk/internal/services"
)

type FinanceHandler struct {
	Service *services.FinanceService
}

func NewFinanceHandler(service *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{Service: service}
}

// @Summary      Monthly plans
// @Description  Revenue goals and cost forecasts from a month on, oldest first.
// @Tags         Finance
// @Produce      json
// @Param        from  query     string  false  "first month, YYYY-MM (default: current month)"
// @Success      200   {array}   models.MonthlyPlan
// @Failure      400   {object}  map[string]string
// @Router       /finance/plans [get]
func (h *FinanceHandler) ListPlans(c *gin.Context) {
	plans, err := h.Service.Plans(c.Request.Context(), c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary      Set a month's plan
// @Tags         Finance
// @Accept       json
// @Produce      json
// @Param        month  path      string               true  "YYYY-MM"
// @Param        plan   body      services.PlanInput   true  "Goal and forecast"
// @Success      200    {object}  models.MonthlyPlan
// @Failure      400    {object}  map[string]string
// @Router       /finance/plans/{month} [put]
func (h *FinanceHandler) SavePlan(c *gin.Context) {
	var in services.PlanInput
	if !bindJSON(c, &in) {
		return
	}
	plan, err := h.Service.SavePlan(c.Request.Context(), c.Param("month"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// @Summary      Costs of a month
// @Tags         Finance
// @Produce      json
// @Param        month  query     string  false  "YYYY-MM (default: current month)"
// @Success      200    {array}   models.Cost
// @Failure      400    {object}  map[string]string
// @Router       /finance/costs [get]
func (h *FinanceHandler) ListCosts(c *gin.Context) {
	costs, err := h.Service.Costs(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

// @Summary      Book a cost
// @Tags         Finance
// @Accept       json
// @Produce      json
// @Param        cost  body      services.CostInput  true  "Cost"
// @Success      201   {object}  models.Cost
// @Failure      400   {object}  map[string]string
// @Router       /finance/costs [post]
func (h *FinanceHandler) AddCost(c *gin.Context) {
	var in services.CostInput
	if !bindJSON(c, &in) {
		return
	}
	cost, err := h.Service.AddCost(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cost)
}
