package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/session"
)

// Render はテンプレートを描画します。ナビゲーションバーとフォームで使う
// Authenticated / UserName / CSRFToken は現在のセッションから補完します。
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := session.FromContext(c)
	data["Authenticated"] = sess.Authenticated()
	data["UserName"] = sess.UserName
	data["CSRFToken"] = sess.CSRFToken
	c.HTML(status, name, data)
}

// ErrorPage はエラーメッセージだけの画面を描画します。
func ErrorPage(c *gin.Context, status int, message string) {
	Render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": message,
	})
}

// HomeHandler は GET /home のハンドラーです。
func HomeHandler(c *gin.Context) {
	Render(c, http.StatusOK, "home.html", gin.H{"Title": "Home"})
}

// DashboardHandler は GET /dashboard のハンドラーです。
func DashboardHandler(c *gin.Context) {
	Render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard"})
}
