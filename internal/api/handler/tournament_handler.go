package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// TournamentHandler 赛事模块 HTTP 处理器
type TournamentHandler struct {
	tournamentSvc service.TournamentService
	matchSvc      service.MatchService
}

// NewTournamentHandler 创建 TournamentHandler
func NewTournamentHandler(tournamentSvc service.TournamentService, matchSvc service.MatchService) *TournamentHandler {
	return &TournamentHandler{tournamentSvc: tournamentSvc, matchSvc: matchSvc}
}

// ListTournaments 赛事列表
// GET /api/v1/tournaments
func (h *TournamentHandler) ListTournaments(c *gin.Context) {
	var req dto.TournamentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.tournamentSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTournament 赛事详情
// GET /api/v1/tournaments/:id
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	tournament, err := h.tournamentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, tournament)
}

// CreateTournament 创建赛事，初始状态为 draft
// POST /api/v1/tournaments
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	var req dto.CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	tournament, err := h.tournamentSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, tournament)
}

// UpdateTournament 更新赛事描述信息
// PUT /api/v1/tournaments/:id
func (h *TournamentHandler) UpdateTournament(c *gin.Context) {
	var req dto.UpdateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	tournament, err := h.tournamentSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, tournament)
}

// AdvanceTournament 推进赛事状态
// POST /api/v1/tournaments/:id/advance
func (h *TournamentHandler) AdvanceTournament(c *gin.Context) {
	var req dto.AdvanceTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	tournament, err := h.tournamentSvc.Advance(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, tournament)
}

// DeleteTournament 删除赛事（软删除）
// DELETE /api/v1/tournaments/:id
func (h *TournamentHandler) DeleteTournament(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.tournamentSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetLeaderboard 赛事精神分排行榜
// GET /api/v1/tournaments/:id/leaderboard
func (h *TournamentHandler) GetLeaderboard(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.tournamentSvc.Get(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	entries, err := h.matchSvc.ComputeSpiritLeaderboard(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}
