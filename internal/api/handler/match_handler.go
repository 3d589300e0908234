package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// MatchHandler 比赛与精神分 HTTP 处理器
type MatchHandler struct {
	matchSvc service.MatchService
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(matchSvc service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

// ListMatches 赛事下的比赛，可按状态过滤
// GET /api/v1/tournaments/:id/matches?status=completed
func (h *MatchHandler) ListMatches(c *gin.Context) {
	var req dto.MatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	matches, err := h.matchSvc.ListByTournament(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": matches})
}

// CreateMatch 创建比赛
// POST /api/v1/tournaments/:id/matches
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req dto.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	match, err := h.matchSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, match)
}

// GetMatch 比赛详情
// GET /api/v1/matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matchSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, match)
}

// StartMatch 开赛
// POST /api/v1/matches/:id/start
func (h *MatchHandler) StartMatch(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	match, err := h.matchSvc.Start(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, match)
}

// RecordScore 记录比分并完赛
// PUT /api/v1/matches/:id/score
func (h *MatchHandler) RecordScore(c *gin.Context) {
	var req dto.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	match, err := h.matchSvc.RecordScore(c.Request.Context(), actor, c.Param("id"), *req.Team1Score, *req.Team2Score)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, match)
}

// SubmitSpiritScore 提交精神分
// POST /api/v1/matches/:id/spirit-scores
func (h *MatchHandler) SubmitSpiritScore(c *gin.Context) {
	var req dto.SubmitSpiritScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	score, err := h.matchSvc.SubmitSpiritScore(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, score)
}

// ListSpiritScores 比赛下的精神分提交
// GET /api/v1/matches/:id/spirit-scores
func (h *MatchHandler) ListSpiritScores(c *gin.Context) {
	scores, err := h.matchSvc.ListSpiritScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": scores})
}
