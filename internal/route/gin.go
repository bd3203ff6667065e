package route

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/session"
)

// Middleware はリクエストパスを t で判定し、リダイレクトならハンドラーを実行せずに遷移させます。
// session.Load の後に登録する必要があります。
func (t Table) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		action := t.Resolve(c.Request.URL.Path, session.FromContext(c).State)
		if action.Kind == ActionRedirect {
			redirect(c, action.Target)
			return
		}
		c.Next()
	}
}

// NoRoute はどのルートにも一致しないリクエストをワイルドカード規則で遷移させるハンドラーです。
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect(c, Fallback(session.FromContext(c).State).Target)
	}
}

// RequireAuthenticated は画面パスではない保護された操作（削除など）用のミドルウェアです。
// 未認証なら /login へ遷移させます。
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.FromContext(c).Authenticated() {
			redirect(c, PathLogin)
			return
		}
		c.Next()
	}
}

func redirect(c *gin.Context, target string) {
	status := http.StatusSeeOther
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		status = http.StatusFound
	}
	c.Redirect(status, target)
	c.Abort()
}
