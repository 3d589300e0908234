package policy

import (
	"slices"

	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// Action 引擎对外暴露的操作
type Action string

const (
	ActionCreateTournament  Action = "createTournament"
	ActionEditTournament    Action = "editTournament"
	ActionDeleteTournament  Action = "deleteTournament"
	ActionAdvanceTournament Action = "advanceTournament"

	ActionRegisterTeam     Action = "registerTeam"
	ActionManageTeamRoster Action = "manageTeamRoster"
	ActionApproveTeam      Action = "approveTeam"
	ActionRejectTeam       Action = "rejectTeam"
	ActionWaitlistTeam     Action = "waitlistTeam"

	ActionCreateMatch       Action = "createMatch"
	ActionStartMatch        Action = "startMatch"
	ActionRecordMatchScore  Action = "recordMatchScore"
	ActionSubmitSpiritScore Action = "submitSpiritScore"
	ActionExportLeaderboard Action = "exportLeaderboard"

	ActionCreateCoachingSession  Action = "createCoachingSession"
	ActionManageCoachingSession  Action = "manageCoachingSession"
	ActionRecordAttendance       Action = "recordAttendance"
	ActionRecordHomeVisit        Action = "recordHomeVisit"
	ActionCreateAssessment       Action = "createAssessment"
	ActionGenerateProgressReport Action = "generateProgressReport"

	ActionViewOwnProgress     Action = "viewOwnProgress"
	ActionViewStudentProgress Action = "viewStudentProgress"
	ActionAssignCoach         Action = "assignCoach"
	ActionEditStudentProfile  Action = "editStudentProfile"
)

// Subject 权限判断所需的目标实体状态
type Subject struct {
	// Status 目标实体当前状态（球队报名状态、比赛状态、课程状态等）
	Status string
	// OwnerID 归属者：课程/学员的教练 ID，学员档案对应的用户 ID，或球队队长 ID
	OwnerID string
	// ParticipantIDs 球队参与者（队长与球员）的用户 ID
	ParticipantIDs []string
}

// capability 权限矩阵中的一行
type capability struct {
	roles []Role
	// owned 为 true 时要求 Subject.OwnerID == Actor.ID（管理员不豁免，除非 adminBypass）
	owned       bool
	adminBypass bool
	// participant 为 true 时要求 Actor.ID 属于 Subject.ParticipantIDs
	participant bool
	// state 目标状态守卫，返回 false 时报 InvalidTransition
	state func(status string) bool
}

var anyRole = []Role{RoleAdmin, RoleCoach, RoleStudent}

// capabilities 全局唯一的权限矩阵，各处只做查表，不再散落角色判断
var capabilities = map[Action]capability{
	ActionCreateTournament:  {roles: []Role{RoleAdmin}},
	ActionEditTournament:    {roles: []Role{RoleAdmin}},
	ActionDeleteTournament:  {roles: []Role{RoleAdmin}},
	ActionAdvanceTournament: {roles: []Role{RoleAdmin}},

	ActionRegisterTeam:     {roles: anyRole},
	ActionManageTeamRoster: {roles: anyRole, owned: true, adminBypass: true},
	ActionApproveTeam: {
		roles: []Role{RoleAdmin},
		state: func(s string) bool {
			return CanTransitionRegistration(RegistrationStatus(s), RegistrationApproved)
		},
	},
	ActionRejectTeam: {
		roles: []Role{RoleAdmin},
		state: func(s string) bool {
			return CanTransitionRegistration(RegistrationStatus(s), RegistrationRejected)
		},
	},
	ActionWaitlistTeam: {
		roles: []Role{RoleAdmin},
		state: func(s string) bool {
			return CanTransitionRegistration(RegistrationStatus(s), RegistrationWaitlisted)
		},
	},

	ActionCreateMatch: {roles: []Role{RoleAdmin}},
	ActionStartMatch: {
		roles: []Role{RoleAdmin},
		state: func(s string) bool { return CanTransitionMatch(MatchStatus(s), MatchInProgress) },
	},
	ActionRecordMatchScore: {
		roles: []Role{RoleAdmin},
		state: func(s string) bool { return MatchStatus(s) != MatchCompleted },
	},
	ActionSubmitSpiritScore: {
		roles:       anyRole,
		participant: true,
		state:       func(s string) bool { return MatchStatus(s) == MatchCompleted },
	},
	ActionExportLeaderboard: {roles: []Role{RoleAdmin}},

	ActionCreateCoachingSession: {roles: []Role{RoleCoach}},
	ActionManageCoachingSession: {roles: []Role{RoleCoach}, owned: true},
	ActionRecordAttendance: {
		roles: []Role{RoleCoach},
		owned: true,
		state: func(s string) bool { return SessionStatus(s) != SessionCancelled },
	},
	ActionRecordHomeVisit:        {roles: []Role{RoleCoach}, owned: true},
	ActionCreateAssessment:       {roles: []Role{RoleCoach}, owned: true},
	ActionGenerateProgressReport: {roles: []Role{RoleCoach}, owned: true},

	ActionViewOwnProgress:     {roles: []Role{RoleStudent}, owned: true},
	ActionViewStudentProgress: {roles: []Role{RoleAdmin, RoleCoach}, owned: true, adminBypass: true},
	ActionAssignCoach:         {roles: []Role{RoleAdmin}},
	ActionEditStudentProfile:  {roles: []Role{RoleAdmin, RoleStudent}, owned: true, adminBypass: true},
}

// CanPerform 纯谓词：actor 能否对处于 subject 状态的实体执行 action
func CanPerform(actor Actor, action Action, subject Subject) bool {
	return Authorize(actor, action, subject) == nil
}

// Authorize 与 CanPerform 判断一致，但返回具体原因：
// 角色或归属不符 → PermissionDenied；状态守卫不满足 → InvalidTransition。
func Authorize(actor Actor, action Action, subject Subject) error {
	if err := AuthorizeRole(actor, action); err != nil {
		return err
	}

	op := "policy." + string(action)
	c := capabilities[action]
	if c.owned && !(c.adminBypass && actor.IsAdmin()) && subject.OwnerID != actor.ID {
		return pkgerrors.PermissionDenied(op, "只能操作属于自己的记录")
	}
	if c.participant && !slices.Contains(subject.ParticipantIDs, actor.ID) {
		return pkgerrors.PermissionDenied(op, "不是该球队成员")
	}
	if c.state != nil && !c.state(subject.Status) {
		return pkgerrors.InvalidTransition(op, "当前状态不允许该操作")
	}
	return nil
}

// AuthorizeRole 只做角色判断，供加载目标实体之前提前拒绝
func AuthorizeRole(actor Actor, action Action) error {
	op := "policy." + string(action)

	c, ok := capabilities[action]
	if !ok {
		return pkgerrors.PermissionDenied(op, "未知操作")
	}
	if !actor.Role.Valid() || actor.ID == "" {
		return pkgerrors.PermissionDenied(op, "无效的操作者")
	}
	if !slices.Contains(c.roles, actor.Role) {
		return pkgerrors.PermissionDenied(op, "当前角色无权执行该操作")
	}
	return nil
}
