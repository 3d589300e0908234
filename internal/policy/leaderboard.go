package policy

import "sort"

// SpiritDimensions 精神分的六个评分维度
const SpiritDimensions = 6

// CompletedMatch 已完赛比赛，排行榜只统计这些比赛下的提交
type CompletedMatch struct {
	MatchID string
	Team1ID string
	Team2ID string
}

// SpiritSubmission 一支球队对对手的一次精神分提交
type SpiritSubmission struct {
	MatchID        string
	OpponentTeamID string
	RulesKnowledge int
	Fouls          int
	BodyContact    int
	Fairness       int
	Attitude       int
	Communication  int
}

// Average 六个维度的算术平均
func (s SpiritSubmission) Average() float64 {
	total := s.RulesKnowledge + s.Fouls + s.BodyContact + s.Fairness + s.Attitude + s.Communication
	return float64(total) / SpiritDimensions
}

// InRange 六个维度是否都落在 [min, max]
func (s SpiritSubmission) InRange(min, max int) bool {
	for _, v := range []int{s.RulesKnowledge, s.Fouls, s.BodyContact, s.Fairness, s.Attitude, s.Communication} {
		if v < min || v > max {
			return false
		}
	}
	return true
}

// LeaderboardEntry 排行榜中的一支球队
type LeaderboardEntry struct {
	TeamID       string
	AverageScore float64
	Submissions  int
}

// AggregateSpiritLeaderboard 计算单个赛事的精神分排行榜。
//
// 只统计 matches 中比赛下的提交（按赛事隔离），按被评价球队分组，
// 球队得分为其各次提交平均分的算术平均。无提交的球队不出现在结果中。
// 结果按平均分降序，分数相同按球队 ID 升序。
func AggregateSpiritLeaderboard(matches []CompletedMatch, submissions []SpiritSubmission) []LeaderboardEntry {
	matchSet := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		matchSet[m.MatchID] = struct{}{}
	}

	type acc struct {
		sum   float64
		count int
	}
	byTeam := make(map[string]*acc)
	for _, s := range submissions {
		if _, ok := matchSet[s.MatchID]; !ok {
			continue
		}
		a, ok := byTeam[s.OpponentTeamID]
		if !ok {
			a = &acc{}
			byTeam[s.OpponentTeamID] = a
		}
		a.sum += s.Average()
		a.count++
	}

	entries := make([]LeaderboardEntry, 0, len(byTeam))
	for teamID, a := range byTeam {
		if a.count == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			TeamID:       teamID,
			AverageScore: a.sum / float64(a.count),
			Submissions:  a.count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		return entries[i].TeamID < entries[j].TeamID
	})
	return entries
}

// ParticipatingTeams 完赛比赛中出现过的球队 ID 集合
func ParticipatingTeams(matches []CompletedMatch) map[string]struct{} {
	teams := make(map[string]struct{}, len(matches)*2)
	for _, m := range matches {
		teams[m.Team1ID] = struct{}{}
		teams[m.Team2ID] = struct{}{}
	}
	return teams
}
