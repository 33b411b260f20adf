package domain

import (
	"errors"
	"net/http"
)

// Kind 错误分类，传输层据此映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
	KindDependency
	KindUnavailable
)

// Error 业务错误：Msg 面向用户，Err 只给运维排查
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

// Status 对应的 HTTP 状态码（冲突沿用 400，与路由表一致）
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) error      { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Unavailable(msg string) error     { return &Error{Kind: KindUnavailable, Msg: msg} }

func Dependency(msg string, err error) error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}

// KindOf 非 *Error 一律视为 KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }
