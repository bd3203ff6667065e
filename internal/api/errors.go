package api

import (
	"errors"
	"fmt"
)

// エラーコード
const (
	CodeAuth    = "AUTH_ERROR"    // 認証APIでの拒否、または 401/403
	CodeNetwork = "NETWORK_ERROR" // 通信失敗、想定外の応答
)

// Error は REST API 呼び出しの失敗を表します。
// Message はサーバーが返した message フィールドで、無ければ空です。
type Error struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code string, status int, message string, err error) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// IsAuthError は認証エラーかどうかを返します。
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeAuth
}

// Message は利用者に表示する文言を返します。サーバーのメッセージがあればそれを、
// 無ければ fallback を返します。
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
