package policy

// ── 赛事状态机 ──
// draft → registration_open → in_progress → completed，只能前进到紧邻的下一状态。

type TournamentStatus string

const (
	TournamentDraft            TournamentStatus = "draft"
	TournamentRegistrationOpen TournamentStatus = "registration_open"
	TournamentInProgress       TournamentStatus = "in_progress"
	TournamentCompleted        TournamentStatus = "completed"
)

var tournamentNext = map[TournamentStatus]TournamentStatus{
	TournamentDraft:            TournamentRegistrationOpen,
	TournamentRegistrationOpen: TournamentInProgress,
	TournamentInProgress:       TournamentCompleted,
}

// Valid 判断赛事状态是否合法
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentDraft, TournamentRegistrationOpen, TournamentInProgress, TournamentCompleted:
		return true
	}
	return false
}

// NextTournamentStatus 返回紧邻的下一状态；completed 无后继
func NextTournamentStatus(from TournamentStatus) (TournamentStatus, bool) {
	next, ok := tournamentNext[from]
	return next, ok
}

// CanTransitionTournament 仅允许推进到紧邻的下一状态
func CanTransitionTournament(from, to TournamentStatus) bool {
	next, ok := tournamentNext[from]
	return ok && next == to
}

// ── 球队报名状态机 ──
// pending → approved | rejected | waitlisted；waitlisted → approved。
// approved 与 rejected 为终态。若产品需要放开 waitlisted → rejected，只需在此表中增加一项。

type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationApproved   RegistrationStatus = "approved"
	RegistrationRejected   RegistrationStatus = "rejected"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
)

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationPending:    {RegistrationApproved, RegistrationRejected, RegistrationWaitlisted},
	RegistrationWaitlisted: {RegistrationApproved},
}

// CanTransitionRegistration 判断报名状态流转是否合法
func CanTransitionRegistration(from, to RegistrationStatus) bool {
	for _, s := range registrationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal approved / rejected 不可再变更
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationApproved || s == RegistrationRejected
}

// IsApproved 展示用筛选谓词：已通过的球队
func IsApproved(s RegistrationStatus) bool { return s == RegistrationApproved }

// IsAwaitingDecision 展示用筛选谓词：待审核及其他非终态球队
func IsAwaitingDecision(s RegistrationStatus) bool { return !s.IsTerminal() }

// ── 比赛状态机 ──
// scheduled → in_progress → completed；记录比分可从 scheduled 或 in_progress 直接进入 completed。

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// CanTransitionMatch 判断比赛状态流转是否合法
func CanTransitionMatch(from, to MatchStatus) bool {
	switch to {
	case MatchInProgress:
		return from == MatchScheduled
	case MatchCompleted:
		return from == MatchScheduled || from == MatchInProgress
	}
	return false
}

// ── 训练课程状态机 ──
// scheduled → in_progress → completed，scheduled → cancelled。completed 与 cancelled 为终态。

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled:  {SessionInProgress, SessionCancelled},
	SessionInProgress: {SessionCompleted},
}

// CanTransitionSession 判断课程状态流转是否合法
func CanTransitionSession(from, to SessionStatus) bool {
	for _, s := range sessionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal completed / cancelled 不可再变更
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}
