package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/api"
	"github.com/yourusername/employee-portal/internal/route"
	"github.com/yourusername/employee-portal/internal/session"
	"github.com/yourusername/employee-portal/internal/web"
)

// 画面に表示するメッセージ
const (
	MsgLoginFailed        = "Login failed"
	MsgRegisterFailed     = "Registration failed"
	MsgCredentialsMissing = "Email and password are required"
	MsgTooManyAttempts    = "Too many login attempts. Please try again later."
	MsgPasswordMismatch   = "Passwords do not match!"
	MsgFieldsMissing      = "Name, email and password are required"
	MsgSessionUnavailable = "Session is unavailable"

	registerRefresh = "2;url=" + route.PathLogin
)

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Name            string `form:"name" binding:"required"`
	Email           string `form:"email" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirmPassword"`
}

// LoginPage は GET /login のハンドラーです。
func (m *Manager) LoginPage(c *gin.Context) {
	renderLogin(c, http.StatusOK, "", "")
}

// Login は POST /login のハンドラーです。成功するとルートへ遷移し、
// ワイルドカード規則によりダッシュボードが表示されます。
func (m *Manager) Login(c *gin.Context) {
	var req loginForm
	err := c.ShouldBind(&req)
	creds := session.Credentials{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	if err != nil || creds.Email == "" {
		renderLogin(c, http.StatusBadRequest, creds.Email, MsgCredentialsMissing)
		return
	}

	ip := c.ClientIP()
	if retryAfter := m.checkLock(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(retryAfter.Seconds())), 10))
		renderLogin(c, http.StatusTooManyRequests, creds.Email, MsgTooManyAttempts)
		return
	}

	store, ok := session.StoreFromContext(c)
	if !ok {
		web.ErrorPage(c, http.StatusInternalServerError, MsgSessionUnavailable)
		return
	}

	sess, err := m.guard.Login(c.Request.Context(), store, creds)
	if err != nil {
		m.logger.Printf("login failed for %s: %v", creds.Email, err)
		status := http.StatusBadGateway
		if api.IsAuthError(err) {
			status = http.StatusUnauthorized
			m.recordFailure(ip)
		} else if errors.Is(err, session.ErrMissingToken) {
			status = http.StatusUnauthorized
		}
		renderLogin(c, status, creds.Email, api.Message(err, MsgLoginFailed))
		return
	}

	m.resetAttempts(ip)
	session.SetCurrent(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterPage は GET /register のハンドラーです。
func (m *Manager) RegisterPage(c *gin.Context) {
	renderRegister(c, http.StatusOK, gin.H{})
}

// Register は POST /register のハンドラーです。パスワードが一致しない場合は API を呼び出しません。
// 成功すると完了メッセージを表示し、2秒後にログイン画面へ遷移します。
func (m *Manager) Register(c *gin.Context) {
	var req registerForm
	err := c.ShouldBind(&req)
	reg := session.Registration{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	form := gin.H{"Name": reg.Name, "Email": reg.Email}

	if err != nil || reg.Name == "" || reg.Email == "" {
		form["Error"] = MsgFieldsMissing
		renderRegister(c, http.StatusBadRequest, form)
		return
	}
	if reg.Password != req.ConfirmPassword {
		form["PasswordMismatch"] = true
		renderRegister(c, http.StatusBadRequest, form)
		return
	}

	store, ok := session.StoreFromContext(c)
	if !ok {
		web.ErrorPage(c, http.StatusInternalServerError, MsgSessionUnavailable)
		return
	}

	sess, err := m.guard.Register(c.Request.Context(), store, reg)
	if err != nil {
		m.logger.Printf("registration failed for %s: %v", reg.Email, err)
		status := http.StatusBadGateway
		if api.IsAuthError(err) {
			status = http.StatusBadRequest
		}
		form["Error"] = api.Message(err, MsgRegisterFailed)
		renderRegister(c, status, form)
		return
	}

	session.SetCurrent(c, sess)
	form["Success"] = true
	form["Refresh"] = registerRefresh
	renderRegister(c, http.StatusOK, form)
}

// Logout は POST /logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	store, ok := session.StoreFromContext(c)
	if !ok {
		web.ErrorPage(c, http.StatusInternalServerError, MsgSessionUnavailable)
		return
	}
	if err := m.guard.Logout(store); err != nil {
		m.logger.Printf("logout failed: %v", err)
		web.ErrorPage(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	session.SetCurrent(c, &session.Session{State: session.Unauthenticated})
	c.Redirect(http.StatusSeeOther, route.PathLogin)
}

func renderLogin(c *gin.Context, status int, email, errMsg string) {
	web.Render(c, status, "login.html", gin.H{
		"Title": "Login",
		"Email": email,
		"Error": errMsg,
	})
}

func renderRegister(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Register"
	for _, key := range []string{"Name", "Email", "Error", "Refresh"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	for _, key := range []string{"Success", "PasswordMismatch"} {
		if _, ok := data[key]; !ok {
			data[key] = false
		}
	}
	web.Render(c, status, "register.html", data)
}
