package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/realtime"
	"agencydesk/internal/services"
)

type DealHandler struct {
	Service *services.DealService
	Hub     *realtime.Hub
	// Won is told about deals closed through the REST API. Board sessions
	// have their own listeners.
	Won pipeline.Listener
	Log *zap.Logger
}

func NewDealHandler(service *services.DealService, hub *realtime.Hub, won pipeline.Listener, log *zap.Logger) *DealHandler {
	if won == nil {
		won = pipeline.ListenerFuncs{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DealHandler{Service: service, Hub: hub, Won: won, Log: log}
}

type stageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

type boardResponse struct {
	Columns []pipeline.Column `json:"columns"`
}

// @Summary      Create a deal
// @Description  Creates a deal in the "new" stage. Value accepts "R$ 1.200,50" or a number.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Param        deal  body      services.CreateDealInput  true  "Deal form"
// @Success      201   {object}  models.Deal
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /deals [post]
func (h *DealHandler) Create(c *gin.Context) {
	var in services.CreateDealInput
	if !bindJSON(c, &in) {
		return
	}
	deal, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// @Summary      List deals
// @Tags         Deals
// @Produce      json
// @Param        stage      query  string  false  "stage"
// @Param        email      query  string  false  "contact email"
// @Param        deal_type  query  string  false  "recurring | one_off"
// @Param        from       query  string  false  "created from, YYYY-MM-DD"
// @Param        to         query  string  false  "created to, YYYY-MM-DD"
// @Param        sort_by    query  string  false  "created_at | updated_at | value | stage"
// @Param        order      query  string  false  "asc | desc"
// @Param        page       query  int     false  "page"
// @Param        size       query  int     false  "page size"
// @Success      200  {array}   models.Deal
// @Failure      400  {object}  map[string]string
// @Router       /deals [get]
func (h *DealHandler) List(c *gin.Context) {
	filter, err := parseDealFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	deals, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func parseDealFilter(c *gin.Context) (models.DealFilter, error) {
	var f models.DealFilter
	if raw := c.Query("stage"); raw != "" {
		stage, err := models.ParseStage(raw)
		if err != nil {
			return f, &services.ValidationError{Field: "stage", Message: "unknown stage"}
		}
		f.Stage = &stage
	}
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		f.Email = &email
	}
	if raw := c.Query("deal_type"); raw != "" {
		dt := models.DealType(raw)
		if !dt.Valid() {
			return f, &services.ValidationError{Field: "deal_type", Message: "unknown deal type"}
		}
		f.DealType = &dt
	}
	var err error
	if f.CreatedFrom, err = queryDate(c, "from", false); err != nil {
		return f, err
	}
	if f.CreatedTo, err = queryDate(c, "to", true); err != nil {
		return f, err
	}
	f.SortBy = c.DefaultQuery("sort_by", "updated_at")
	f.Order = c.DefaultQuery("order", "desc")

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 100)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 500 {
		size = 100
	}
	f.Limit = size
	f.Offset = (page - 1) * size
	return f, nil
}

// @Summary      Get a deal
// @Tags         Deals
// @Produce      json
// @Param        id   path      string  true  "deal id"
// @Success      200  {object}  models.Deal
// @Failure      404  {object}  map[string]string
// @Router       /deals/{id} [get]
func (h *DealHandler) GetByID(c *gin.Context) {
	deal, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// @Summary      Edit a deal
// @Description  Administrative edit. The stage is changed through /deals/{id}/stage or the board.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "deal id"
// @Param        deal  body      services.UpdateDealInput  true  "fields to change"
// @Success      200   {object}  models.Deal
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /deals/{id} [put]
func (h *DealHandler) Update(c *gin.Context) {
	var in services.UpdateDealInput
	if !bindJSON(c, &in) {
		return
	}
	deal, err := h.Service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// @Summary      Move a deal to another stage
// @Description  Persists first, then answers. Moving into "won" triggers the won notifications.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "deal id"
// @Param        body  body      stageRequest  true  "target stage"
// @Success      200   {object}  models.Deal
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /deals/{id}/stage [post]
func (h *DealHandler) ChangeStage(c *gin.Context) {
	var req stageRequest
	if !bindJSON(c, &req) {
		return
	}
	to, err := models.ParseStage(req.Stage)
	if err != nil {
		respondError(c, err)
		return
	}
	deal, changed, err := h.Service.ChangeStage(c.Request.Context(), c.Param("id"), to)
	if err != nil {
		respondError(c, err)
		return
	}
	if changed && deal.Stage == models.StageWon {
		h.Log.Info("[deal][stage] won via api", zap.String("deal_id", deal.ID), zap.String("user_id", middleware.UserID(c)))
		h.Won.DealWon(*deal)
		if h.Hub != nil {
			h.Hub.Announce(c.Request.Context(), "", *deal)
		}
	}
	c.JSON(http.StatusOK, deal)
}

// @Summary      Pipeline board
// @Description  Deals grouped into stage columns, with count and total per column.
// @Tags         Deals
// @Produce      json
// @Success      200  {object}  boardResponse
// @Router       /deals/board [get]
func (h *DealHandler) Board(c *gin.Context) {
	board, err := h.Service.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse{Columns: board.Columns()})
}

// @Summary      Interactive board session
// @Description  Websocket. Client sends begin_drag, end_drag, cancel_drag, refresh; server sends board, deal_won, error.
// @Tags         Deals
// @Param        token  query  string  false  "JWT, for browsers that cannot set headers on upgrade"
// @Router       /deals/board/ws [get]
func (h *DealHandler) BoardSocket(c *gin.Context) {
	h.Hub.ServeBoard(c.Writer, c.Request, middleware.UserID(c))
}
