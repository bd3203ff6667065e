// Package session はブラウザごとに永続化されるセッション状態と、
// そこから導出される認証状態（Session Guard）を提供します。
package session

import "errors"

// 永続化されるセッション属性のキー
const (
	KeyToken      = "token"
	KeyAuthStatus = "authStatus"
	KeyUserName   = "userName"
	KeyCSRF       = "csrfToken"
	KeyFlash      = "flash"

	authStatusAuthenticated = "authenticated"
)

// ErrMissingToken は認証APIが成功を返したのにトークンが含まれていない場合のエラーです。
var ErrMissingToken = errors.New("auth response did not contain a token")

// Store はセッション属性を読み書きする唯一の窓口です。
// 変更は Save を呼ぶまで永続化されません。
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
	Clear()
	Save() error
}

// State はセッションの認証状態です。
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session はリクエスト開始時に Store から導出されたセッションの内容です。
// State は永続化されず、読み込み時にのみ計算されます。
type Session struct {
	Token     string
	UserName  string
	CSRFToken string
	State     State
}

// Authenticated は認証済みかどうかを返します。
func (s *Session) Authenticated() bool {
	return s != nil && s.State == Authenticated
}

// Credentials はログインフォームの入力です。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration は登録フォームの入力です。
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Grant は認証APIから払い出された資格情報です。
type Grant struct {
	Token    string
	UserName string
}
