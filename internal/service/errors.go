package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError 缺少或非法的必填字段，调用方应修改请求后重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError 更新/删除的目标 id 不存在
type NotFoundError struct {
	Kind string // bathroom/dental
	ID   uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s event %d not found", e.Kind, e.ID)
}

// TransientIOError 存储不可用，调用方可重试
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// ErrorKind 错误分类，用于日志字段与响应体
func ErrorKind(err error) string {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		transient  *TransientIOError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &transient):
		return "transient"
	}
	return "internal"
}

// storageError 把仓储错误转换为业务错误：记录不存在 -> NotFoundError，其余 -> TransientIOError
func storageError(op, kind string, id uint64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return &TransientIOError{Op: op, Err: err}
}
