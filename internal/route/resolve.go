package route

import "github.com/yourusername/employee-portal/internal/session"

// ActionKind は判定結果の種別です。
type ActionKind int

const (
	ActionMount ActionKind = iota
	ActionRedirect
)

func (k ActionKind) String() string {
	if k == ActionRedirect {
		return "redirect"
	}
	return "mount"
}

// Action はナビゲーション1回分の判定結果です。
type Action struct {
	Kind   ActionKind
	View   View              // ActionMount のときのみ
	Params map[string]string // ActionMount のときのみ
	Target string            // ActionRedirect のときのみ
}

// Mount は画面表示の判定を作成します。
func Mount(view View, params map[string]string) Action {
	return Action{Kind: ActionMount, View: view, Params: params}
}

// Redirect はリダイレクトの判定を作成します。
func Redirect(target string) Action {
	return Action{Kind: ActionRedirect, Target: target}
}

// Resolve は DefaultTable でパスを判定します。
func Resolve(path string, state session.State) Action {
	return DefaultTable.Resolve(path, state)
}

// Resolve はパスと認証状態から表示かリダイレクトかを決める純粋関数です。
// どのルートにも一致しない場合、認証済みなら /dashboard、未認証なら /login へリダイレクトします。
func (t Table) Resolve(path string, state session.State) Action {
	if entry, params, ok := t.Lookup(path); ok {
		return entry.Decide(state, params)
	}
	return Fallback(state)
}

// Fallback はワイルドカードルートの判定です。
func Fallback(state session.State) Action {
	if state == session.Authenticated {
		return Redirect(PathDashboard)
	}
	return Redirect(PathLogin)
}
