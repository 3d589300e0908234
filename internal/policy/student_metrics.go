package policy

import (
	"math"
	"sort"
	"time"
)

// AssessmentPoint 一次 LSAS 评估
type AssessmentPoint struct {
	Date  time.Time
	Score int
}

// StudentMetrics 学员的派生指标
type StudentMetrics struct {
	AttendanceRate        int  // 0-100，无出勤记录时为 0
	HomeVisitsCount       int
	LatestAssessmentScore *int // 无评估时为 nil
	ReportsCount          int
}

// AttendanceRate round(100 × 出勤数 / 记录数)；记录为空时返回 0
func AttendanceRate(attended []bool) int {
	if len(attended) == 0 {
		return 0
	}
	present := 0
	for _, a := range attended {
		if a {
			present++
		}
	}
	return int(math.Round(100 * float64(present) / float64(len(attended))))
}

// LatestAssessment 返回评估日期最新的一次；入参顺序无要求
func LatestAssessment(points []AssessmentPoint) (AssessmentPoint, bool) {
	if len(points) == 0 {
		return AssessmentPoint{}, false
	}
	sorted := make([]AssessmentPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted[0], true
}

// ComputeStudentMetrics 由四组独立记录合成学员指标
func ComputeStudentMetrics(attended []bool, homeVisits int, assessments []AssessmentPoint, reports int) StudentMetrics {
	m := StudentMetrics{
		AttendanceRate:  AttendanceRate(attended),
		HomeVisitsCount: homeVisits,
		ReportsCount:    reports,
	}
	if latest, ok := LatestAssessment(assessments); ok {
		score := latest.Score
		m.LatestAssessmentScore = &score
	}
	return m
}
