package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 错误类别 ──
// 业务层所有错误都归入以下类别之一，调用方通过 errors.Is 判断。

var (
	ErrValidation        = errors.New("参数校验失败")
	ErrInvalidTransition = errors.New("非法的状态流转")
	ErrPermissionDenied  = errors.New("无权限执行该操作")
	ErrConflict          = errors.New("数据冲突")
	ErrNotFound          = errors.New("记录不存在")
	ErrCapacityExceeded  = errors.New("超出容量上限")
)

// AppError 带操作上下文的业务错误
type AppError struct {
	Kind    error  // 错误类别（上面的哨兵之一）
	Op      string // 出错的操作，如 "team.Approve"
	Message string
	Err     error // 底层原因，可为空
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap 返回底层原因；无原因时返回类别
func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is 同时匹配类别与底层原因
func (e *AppError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// New 创建指定类别的业务错误
func New(kind error, op, message string) *AppError {
	return &AppError{Kind: kind, Op: op, Message: message}
}

// Wrap 包装底层错误
func Wrap(kind error, op, message string, err error) *AppError {
	return &AppError{Kind: kind, Op: op, Message: message, Err: err}
}

// ── 快捷构造 ──

func Validation(op, message string) *AppError {
	return New(ErrValidation, op, message)
}

func InvalidTransition(op, message string) *AppError {
	return New(ErrInvalidTransition, op, message)
}

func PermissionDenied(op, message string) *AppError {
	return New(ErrPermissionDenied, op, message)
}

func Conflict(op, message string) *AppError {
	return New(ErrConflict, op, message)
}

func NotFound(op, message string) *AppError {
	return New(ErrNotFound, op, message)
}

func CapacityExceeded(op, message string) *AppError {
	return New(ErrCapacityExceeded, op, message)
}

// KindOf 返回错误所属类别，未归类时返回 nil
func KindOf(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != nil {
		return appErr.Kind
	}
	for _, k := range []error{
		ErrValidation,
		ErrPermissionDenied,
		ErrNotFound,
		ErrCapacityExceeded,
		ErrConflict,
		ErrInvalidTransition,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, ErrOptimisticLock) {
		return ErrConflict
	}
	return nil
}
