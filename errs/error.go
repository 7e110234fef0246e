package errs

import (
	"errors"
	"fmt"
	"strings"
)

type CodeError interface {
	error
	Code() int32
	Print(extras ...string) CodeError
	Printf(format string, args ...any) CodeError
	Wrap(cause error) CodeError
	Unwrap() error
	Is(error) bool
}

func CreateCodeError(code int32, desc string) CodeError {
	return &codeError{
		Errno: code, // 错误码数字
		Desc:  desc, // 错误描述, 如: UNKNOWN_TIMER,beacon
	}
}

// WrapError 非CodeError统一转成Unknown, 保留原始错误
func WrapError(err error) CodeError {
	if err == nil {
		return nil
	}
	var x *codeError
	if errors.As(err, &x) {
		return x
	}
	return Unknown.Wrap(err)
}

// CodeOf 取错误链上第一个CodeError的错误码
func CodeOf(err error) int32 {
	if err == nil {
		return ErrCode_OK
	}
	var x *codeError
	if errors.As(err, &x) {
		return x.Errno
	}
	return ErrCode_Unknown
}

type codeError struct {
	Errno int32
	Desc  string
	cause error
	// 额外匹配的错误码, UnsupportedTimerKind 同时也是 InvalidTimerDefinition
	also []int32
}

func (e *codeError) Code() int32 {
	return e.Errno
}

func (e *codeError) Error() string {
	if e.cause != nil {
		return e.Desc + ": " + e.cause.Error()
	}
	return e.Desc
}

func (e *codeError) String() string {
	return fmt.Sprintf("errno: %d, desc: %s", e.Errno, e.Error())
}

func (e *codeError) clone(desc string) *codeError {
	return &codeError{
		Errno: e.Errno,
		Desc:  desc,
		cause: e.cause,
		also:  e.also,
	}
}

func (e *codeError) Print(extras ...string) CodeError {
	if len(extras) == 0 {
		return e
	}
	ns := len(e.Desc) + len(extras)
	for _, extra := range extras {
		ns += len(extra)
	}
	builder := strings.Builder{}
	builder.Grow(ns)
	builder.WriteString(e.Desc)
	for _, extra := range extras {
		builder.WriteByte(',')
		builder.WriteString(extra)
	}
	return e.clone(builder.String())
}

func (e *codeError) Printf(format string, args ...any) CodeError {
	if len(format) == 0 {
		return e
	}
	return e.clone(fmt.Sprintf(e.Desc+","+format, args...))
}

func (e *codeError) Wrap(cause error) CodeError {
	er := e.clone(e.Desc)
	er.cause = cause
	return er
}

func (e *codeError) Unwrap() error {
	return e.cause
}

// Also 返回同时匹配target错误码的副本
func Also(e CodeError, target CodeError) CodeError {
	x, ok := e.(*codeError)
	if !ok {
		return e
	}
	er := x.clone(x.Desc)
	er.also = append(append([]int32(nil), x.also...), target.Code())
	return er
}

func (e *codeError) Is(target error) bool {
	x, ok := target.(*codeError)
	if !ok {
		return false
	}
	if x.Errno == e.Errno {
		return true
	}
	for _, code := range e.also {
		if code == x.Errno {
			return true
		}
	}
	return false
}
