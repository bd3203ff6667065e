package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/session"
	"github.com/yourusername/employee-portal/internal/web"
)

// VerifyCSRF は状態を変更するリクエストの CSRF トークンを検証するミドルウェアです。
// トークンは X-CSRF-Token ヘッダー、または csrf_token フォーム項目から読み取ります。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		expected := session.FromContext(c).CSRFToken
		if expected == "" {
			web.ErrorPage(c, http.StatusForbidden, "CSRF token is not set")
			c.Abort()
			return
		}

		received := c.GetHeader(csrfHeader)
		if received == "" {
			received = c.PostForm(csrfFormField)
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			m.logger.Printf("csrf token mismatch on %s %s", c.Request.Method, c.Request.URL.Path)
			web.ErrorPage(c, http.StatusForbidden, "Invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
