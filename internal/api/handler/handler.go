package handler

import "github.com/Nisheeka1604/yultimate/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Student      *StudentHandler
	Tournament   *TournamentHandler
	Team         *TeamHandler
	Match        *MatchHandler
	Coaching     *CoachingHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Student:      NewStudentHandler(svc.Student, svc.Metrics),
		Tournament:   NewTournamentHandler(svc.Tournament, svc.Match),
		Team:         NewTeamHandler(svc.Team),
		Match:        NewMatchHandler(svc.Match),
		Coaching:     NewCoachingHandler(svc.Coaching, svc.Calendar),
		Dashboard:    NewDashboardHandler(svc.Metrics),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
