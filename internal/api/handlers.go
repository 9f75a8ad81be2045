package api

import (
	"net/http"
	"strconv"

	"prediction-radar/internal/ai/analysis"
	"prediction-radar/internal/database"
	"prediction-radar/internal/markets"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	health := gin.H{
		"status": "ok",
		"venues": s.aggregator.Venues(),
	}
	if s.hub != nil {
		health["priceStreamSessions"] = s.hub.SessionCount()
	}
	c.JSON(http.StatusOK, health)
}

func (s *Server) handleTrending(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	events := s.svc.TrendingEvents(c.Request.Context(), limit)
	successResponse(c, events)
}

func (s *Server) handleOpportunities(c *gin.Context) {
	limit := queryInt(c, "limit", 3)
	opportunities := s.svc.Opportunities(c.Request.Context(), limit)
	successResponse(c, opportunities)
}

type matchEventRequest struct {
	Title    string   `json:"title" binding:"required"`
	Keywords []string `json:"keywords" binding:"required"`
	Limit    int      `json:"limit"`
}

func (s *Server) handleMatchEvent(c *gin.Context) {
	var req matchEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "title and keywords are required")
		return
	}
	candidates := s.svc.MatchEvent(c.Request.Context(), req.Title, req.Keywords, req.Limit)
	successResponse(c, candidates)
}

type warmCacheRequest struct {
	VelocityThreshold int `json:"velocityThreshold"`
}

func (s *Server) handleWarmCache(c *gin.Context) {
	var req warmCacheRequest
	// Body is optional, default threshold applies when absent
	_ = c.ShouldBindJSON(&req)

	result := s.svc.WarmCache(c.Request.Context(), req.VelocityThreshold)
	successResponse(c, result)
}

func (s *Server) handleMarketOfTheHour(c *gin.Context) {
	pick := s.svc.MarketOfTheHour(c.Request.Context())
	// A nil pick is a valid "nothing stands out right now" answer
	successResponse(c, pick)
}

type analyzeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Markets     []struct {
		Question    string  `json:"question"`
		Venue       string  `json:"venue"`
		Probability float64 `json:"probability"`
	} `json:"markets"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "title is required")
		return
	}

	related := make([]analysis.RelatedMarket, 0, len(req.Markets))
	for _, m := range req.Markets {
		related = append(related, analysis.RelatedMarket{
			Question:    m.Question,
			Venue:       m.Venue,
			Probability: m.Probability,
		})
	}

	impact, err := s.analyzer.AnalyzeNewsImpact(c.Request.Context(), req.Title, req.Description, related)
	if err != nil {
		s.logger.Warn().Err(err).Msg("news impact analysis failed")
		errorResponse(c, http.StatusBadGateway, "analysis failed")
		return
	}
	successResponse(c, impact)
}

func (s *Server) handleMarkets(c *gin.Context) {
	limit := queryInt(c, "limit", 30)
	successResponse(c, s.aggregator.FetchAll(c.Request.Context(), limit))
}

func (s *Server) handleMarketSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		errorResponse(c, http.StatusBadRequest, "q parameter is required")
		return
	}
	limit := queryInt(c, "limit", 20)
	successResponse(c, s.aggregator.Search(c.Request.Context(), query, limit))
}

func (s *Server) handleMarketByID(c *gin.Context) {
	venue := markets.Venue(c.Param("venue"))
	market := s.aggregator.GetMarket(c.Request.Context(), venue, c.Param("id"))
	if market == nil {
		errorResponse(c, http.StatusNotFound, "market not found")
		return
	}
	successResponse(c, market)
}

// Position journal handlers. All of them report 503 when no database is
// configured.

func (s *Server) journalOr503(c *gin.Context) *database.DB {
	if s.db == nil {
		errorResponse(c, http.StatusServiceUnavailable, "position journal is not configured")
		return nil
	}
	return s.db
}

func (s *Server) handleListPositions(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	positions, err := db.ListPositions(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list positions")
		errorResponse(c, http.StatusInternalServerError, "failed to list positions")
		return
	}
	successResponse(c, positions)
}

func (s *Server) handleGetPosition(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid position id")
		return
	}

	position, err := db.GetPosition(c.Request.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to get position")
		errorResponse(c, http.StatusInternalServerError, "failed to get position")
		return
	}
	if position == nil {
		errorResponse(c, http.StatusNotFound, "position not found")
		return
	}
	successResponse(c, position)
}

type createPositionRequest struct {
	Venue      string  `json:"venue" binding:"required"`
	MarketID   string  `json:"marketId"`
	Question   string  `json:"question" binding:"required"`
	Side       string  `json:"side" binding:"required"`
	EntryPrice float64 `json:"entryPrice" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Notes      string  `json:"notes"`
}

func (s *Server) handleCreatePosition(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	var req createPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "venue, question, side, entryPrice and quantity are required")
		return
	}
	if req.Side != "YES" && req.Side != "NO" {
		errorResponse(c, http.StatusBadRequest, "side must be YES or NO")
		return
	}

	position := &database.Position{
		Venue:      req.Venue,
		MarketID:   req.MarketID,
		Question:   req.Question,
		Side:       req.Side,
		EntryPrice: req.EntryPrice,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	}
	if err := db.CreatePosition(c.Request.Context(), position); err != nil {
		s.logger.Error().Err(err).Msg("failed to create position")
		errorResponse(c, http.StatusInternalServerError, "failed to create position")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": position})
}

type updatePositionRequest struct {
	Venue      string  `json:"venue"`
	MarketID   string  `json:"marketId"`
	Question   string  `json:"question"`
	Side       string  `json:"side"`
	EntryPrice float64 `json:"entryPrice"`
	Quantity   float64 `json:"quantity"`
	Notes      string  `json:"notes"`
	Status     string  `json:"status"`
}

func (s *Server) handleUpdatePosition(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid position id")
		return
	}

	position, err := db.GetPosition(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load position")
		return
	}
	if position == nil {
		errorResponse(c, http.StatusNotFound, "position not found")
		return
	}

	var req updatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Venue != "" {
		position.Venue = req.Venue
	}
	if req.MarketID != "" {
		position.MarketID = req.MarketID
	}
	if req.Question != "" {
		position.Question = req.Question
	}
	if req.Side != "" {
		position.Side = req.Side
	}
	if req.EntryPrice != 0 {
		position.EntryPrice = req.EntryPrice
	}
	if req.Quantity != 0 {
		position.Quantity = req.Quantity
	}
	if req.Notes != "" {
		position.Notes = req.Notes
	}
	if req.Status != "" {
		position.Status = req.Status
	}

	if err := db.UpdatePosition(c.Request.Context(), position); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to update position")
		errorResponse(c, http.StatusInternalServerError, "failed to update position")
		return
	}
	successResponse(c, position)
}

type closePositionRequest struct {
	ExitPrice float64 `json:"exitPrice" binding:"required"`
	PnL       float64 `json:"pnl"`
}

func (s *Server) handleClosePosition(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid position id")
		return
	}

	var req closePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "exitPrice is required")
		return
	}

	if err := db.ClosePosition(c.Request.Context(), id, req.ExitPrice, req.PnL); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to close position")
		errorResponse(c, http.StatusNotFound, "position not found")
		return
	}
	successResponse(c, gin.H{"message": "position closed"})
}

func (s *Server) handleDeletePosition(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid position id")
		return
	}

	if err := db.DeletePosition(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusNotFound, "position not found")
		return
	}
	successResponse(c, gin.H{"message": "position deleted"})
}

func (s *Server) handlePnLSummary(c *gin.Context) {
	db := s.journalOr503(c)
	if db == nil {
		return
	}

	summary, err := db.PnLSummary(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to summarize pnl")
		errorResponse(c, http.StatusInternalServerError, "failed to summarize pnl")
		return
	}
	successResponse(c, summary)
}

func queryInt(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
