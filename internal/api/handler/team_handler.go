package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// TeamHandler 球队报名 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams 赛事下的球队，按已通过 / 待定 / 已拒绝分组
// GET /api/v1/tournaments/:id/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamSvc.ListByTournament(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, service.GroupTeams(teams))
}

// RegisterTeam 报名球队，当前用户为队长
// POST /api/v1/tournaments/:id/teams
func (h *TeamHandler) RegisterTeam(c *gin.Context) {
	var req dto.RegisterTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Register(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, team)
}

// GetTeam 球队详情
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, team)
}

// ApproveTeam 审批通过
// POST /api/v1/teams/:id/approve
func (h *TeamHandler) ApproveTeam(c *gin.Context) {
	h.decide(c, h.teamSvc.Approve)
}

// RejectTeam 拒绝
// POST /api/v1/teams/:id/reject
func (h *TeamHandler) RejectTeam(c *gin.Context) {
	h.decide(c, h.teamSvc.Reject)
}

// WaitlistTeam 转入候补
// POST /api/v1/teams/:id/waitlist
func (h *TeamHandler) WaitlistTeam(c *gin.Context) {
	h.decide(c, h.teamSvc.Waitlist)
}

type teamDecision func(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error)

// decide 请求体可省略；携带 expected_status 时按乐观并发处理
func (h *TeamHandler) decide(c *gin.Context, fn teamDecision) {
	var req dto.TeamDecisionRequest
	// 空请求体（含分块传输）视为未携带 expected_status
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	team, err := fn(c.Request.Context(), actor, c.Param("id"), req.ExpectedStatus)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, team)
}

// AddPlayers 追加球员，仅队长或管理员
// POST /api/v1/teams/:id/players
func (h *TeamHandler) AddPlayers(c *gin.Context) {
	var req dto.AddPlayersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.AddPlayers(c.Request.Context(), actor, c.Param("id"), req.Players)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, team)
}
