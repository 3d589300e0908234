package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// lockConflict 仓储层乐观锁或唯一约束冲突统一报 Conflict
func lockConflict(op, message string, err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.Wrap(pkgerrors.ErrConflict, op, message, err)
	}
	return nil
}

// isNotFound 仓储层未命中
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// authorizeStudentView 学员本人、负责教练或管理员可查看学员数据
func authorizeStudentView(actor policy.Actor, p *model.StudentProfile) error {
	if actor.Role == policy.RoleStudent {
		return policy.Authorize(actor, policy.ActionViewOwnProgress, policy.Subject{OwnerID: p.UserID})
	}
	return policy.Authorize(actor, policy.ActionViewStudentProgress, policy.Subject{OwnerID: derefString(p.CoachID)})
}
