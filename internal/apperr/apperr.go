package apperr

import (
	"errors"
	"fmt"
)

// Kind 失败分类：网络、解析、未找到、翻译、写入
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindParse
	KindNotFound
	KindTransform
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindNotFound:
		return "not_found"
	case KindTransform:
		return "transform"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error 带分类的错误，Op 记录出错的操作（例如 "yahoo: fetch"）
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Network(op string, err error) error   { return newError(KindNetwork, op, err) }
func Parse(op string, err error) error     { return newError(KindParse, op, err) }
func NotFound(op string, err error) error  { return newError(KindNotFound, op, err) }
func Transform(op string, err error) error { return newError(KindTransform, op, err) }
func Write(op string, err error) error     { return newError(KindWrite, op, err) }

// KindOf 返回错误链上第一个 *Error 的分类
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
