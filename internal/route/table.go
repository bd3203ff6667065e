// Package route は画面パスと認証状態から「画面を表示するか、どこへリダイレクトするか」を決める
// 静的なルート表と判定関数を提供します。
package route

import (
	"strings"

	"github.com/yourusername/employee-portal/internal/session"
)

// View は表示する画面の識別子です。
type View string

const (
	ViewLogin          View = "login"
	ViewRegister       View = "register"
	ViewHome           View = "home"
	ViewDashboard      View = "dashboard"
	ViewEmployeeList   View = "employee-list"
	ViewCreateEmployee View = "create-employee"
	ViewEditEmployee   View = "edit-employee"
)

// 画面パス
const (
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathHome           = "/home"
	PathDashboard      = "/dashboard"
	PathEmployeeList   = "/employee-list"
	PathCreateEmployee = "/create-employee"
	PathEditEmployee   = "/edit-employee/:id"
)

// Entry はルート表の1行です。
type Entry struct {
	Path         string // ":name" は1セグメントを捕捉するプレースホルダー
	View         View
	RequiresAuth bool
	// UnauthenticatedRedirect は RequiresAuth のルートに未認証で来た場合の遷移先です。
	UnauthenticatedRedirect string
	// AuthenticatedRedirect が空でなければ、認証済みの場合はそこへ遷移します。
	AuthenticatedRedirect string
}

// Table はルート表です。先頭から順に照合します。
type Table []Entry

// DefaultTable はアプリケーションのルート表です。実行時に変更しないでください。
//
// /home の未認証時の遷移先が /home 自身になっているのは元の挙動のままです。
var DefaultTable = Table{
	{Path: PathLogin, View: ViewLogin, AuthenticatedRedirect: PathDashboard},
	{Path: PathRegister, View: ViewRegister},
	{Path: PathHome, View: ViewHome, RequiresAuth: true, UnauthenticatedRedirect: PathHome},
	{Path: PathDashboard, View: ViewDashboard, RequiresAuth: true, UnauthenticatedRedirect: PathLogin},
	{Path: PathEmployeeList, View: ViewEmployeeList, RequiresAuth: true, UnauthenticatedRedirect: PathLogin},
	{Path: PathCreateEmployee, View: ViewCreateEmployee, RequiresAuth: true, UnauthenticatedRedirect: PathLogin},
	{Path: PathEditEmployee, View: ViewEditEmployee, RequiresAuth: true, UnauthenticatedRedirect: PathLogin},
}

// Decide はこのルートに一致したときの判定を返します。
func (e Entry) Decide(state session.State, params map[string]string) Action {
	if state == session.Authenticated {
		if e.AuthenticatedRedirect != "" {
			return Redirect(e.AuthenticatedRedirect)
		}
		return Mount(e.View, params)
	}
	if e.RequiresAuth {
		target := e.UnauthenticatedRedirect
		if target == "" {
			target = PathLogin
		}
		return Redirect(target)
	}
	return Mount(e.View, params)
}

// Match はパスがこのルートに一致するかを判定し、プレースホルダーの値を返します。
// 末尾のスラッシュと固定セグメントの大文字小文字は区別しません。
func (e Entry) Match(path string) (map[string]string, bool) {
	pattern := splitPath(e.Path)
	segments := splitPath(path)
	if len(pattern) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segments[i]
			continue
		}
		if !strings.EqualFold(p, segments[i]) {
			return nil, false
		}
	}
	return params, true
}

// Lookup はパスに一致する最初のルートを返します。
func (t Table) Lookup(path string) (Entry, map[string]string, bool) {
	for _, e := range t {
		if params, ok := e.Match(path); ok {
			return e, params, true
		}
	}
	return Entry{}, nil, false
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
