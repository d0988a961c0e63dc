package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation は必須入力の不足など、コール前に検出した入力エラーです。
	ErrValidation = errors.New("validation failed")
	// ErrTransport はネットワーク層で失敗したことを表します。
	ErrTransport = errors.New("transport failure")
	// ErrRemote はリモート API がエラーを返したことを表します。
	ErrRemote = errors.New("remote application error")
	// ErrMalformedResponse は応答にテキストパートが含まれていないなど、想定外の形だったことを表します。
	ErrMalformedResponse = errors.New("malformed response")
	// ErrBusy は同じ種類のコールが既に実行中であることを表します。
	ErrBusy = errors.New("call already in progress")
	// ErrNotExtracted は抽出が完了する前に生成が要求されたことを表します。
	ErrNotExtracted = errors.New("content has not been extracted")
)

// CallError は画面にそのまま表示できるメッセージを持つエラーです。
type CallError struct {
	Kind    error
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Is は Kind と一致するセンチネルに対して true を返します。
func (e *CallError) Is(target error) bool {
	return e.Kind == target
}

// NewValidationError は入力エラーを生成します。
func NewValidationError(message string) *CallError {
	return &CallError{Kind: ErrValidation, Message: message}
}

// UserMessage はエラーから利用者向けのメッセージを1つ取り出します。
// CallError でない、またはメッセージが空の場合は fallback を返します。
func UserMessage(err error, fallback string) string {
	var ce *CallError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
