// Package policy 业务引擎的纯逻辑部分：角色权限矩阵、各实体状态机、
// 精神分排行榜与学员指标聚合。本包不做任何 I/O，全部函数可直接单测。
package policy

// Role 用户角色，创建后不可修改
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleStudent:
		return true
	}
	return false
}

// Actor 发起操作的用户，由调用方显式传入每个引擎调用
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
