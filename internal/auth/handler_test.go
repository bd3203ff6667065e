package auth

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/api"
	"github.com/yourusername/employee-portal/internal/config"
	"github.com/yourusername/employee-portal/internal/route"
	"github.com/yourusername/employee-portal/internal/session"
	"github.com/yourusername/employee-portal/internal/web"
)

type stubAuth struct {
	loginGrant    *session.Grant
	loginErr      error
	registerGrant *session.Grant
	registerErr   error

	loginCalls    int
	registerCalls int
	lastCreds     session.Credentials
	lastReg       session.Registration
}

func (s *stubAuth) Login(ctx context.Context, creds session.Credentials) (*session.Grant, error) {
	s.loginCalls++
	s.lastCreds = creds
	return s.loginGrant, s.loginErr
}

func (s *stubAuth) Register(ctx context.Context, reg session.Registration) (*session.Grant, error) {
	s.registerCalls++
	s.lastReg = reg
	return s.registerGrant, s.registerErr
}

func newTestRouter(t *testing.T, auth *stubAuth, maxAttempts int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := log.New(io.Discard, "", 0)
	guard := session.NewGuard(auth, session.GuardOptions{Logger: logger})
	manager := NewManager(&config.Config{LoginMaxAttempts: maxAttempts}, guard, logger)

	router := gin.New()
	router.SetHTMLTemplate(web.MustTemplates())
	router.Use(sessions.Sessions("employee_session", cookie.NewStore([]byte("test-secret"))))
	router.Use(session.Load(guard))

	pages := router.Group("/", route.DefaultTable.Middleware())
	pages.GET("/login", manager.LoginPage)
	pages.POST("/login", manager.Login)
	pages.GET("/register", manager.RegisterPage)
	pages.POST("/register", manager.Register)
	pages.GET("/dashboard", web.DashboardHandler)
	router.POST("/logout", route.RequireAuthenticated(), manager.VerifyCSRF(), manager.Logout)
	router.NoRoute(route.NoRoute())
	return router
}

func postForm(path string, values url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return req
}

func get(path string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return req
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

func TestLoginLogoutFlow(t *testing.T) {
	auth := &stubAuth{loginGrant: &session.Grant{Token: "xyz", UserName: "Hukum"}}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}, "password": {"secret"}}, nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("unexpected login response: %d %s", w.Code, w.Header().Get("Location"))
	}
	if auth.lastCreds.Email != "a@b.co" || auth.lastCreds.Password != "secret" {
		t.Fatalf("unexpected credentials: %#v", auth.lastCreds)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	// ルートはダッシュボードへ
	w = httptest.NewRecorder()
	router.ServeHTTP(w, get("/", cookies))
	if w.Code != http.StatusFound || w.Header().Get("Location") != route.PathDashboard {
		t.Fatalf("unexpected root response: %d %s", w.Code, w.Header().Get("Location"))
	}

	// 認証済みでログイン画面を開くとダッシュボードへ
	w = httptest.NewRecorder()
	router.ServeHTTP(w, get("/login", cookies))
	if w.Code != http.StatusFound || w.Header().Get("Location") != route.PathDashboard {
		t.Fatalf("unexpected /login response: %d %s", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, get("/dashboard", cookies))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Hello, Hukum!") {
		t.Fatalf("unexpected dashboard response: %d", w.Code)
	}
	match := csrfPattern.FindStringSubmatch(w.Body.String())
	if match == nil {
		t.Fatal("expected csrf token in logout form")
	}

	// CSRF トークンが無いログアウトは拒否
	w = httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/logout", url.Values{}, cookies))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/logout", url.Values{"csrf_token": {match[1]}}, cookies))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != route.PathLogin {
		t.Fatalf("unexpected logout response: %d %s", w.Code, w.Header().Get("Location"))
	}
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected the session cookie to be expired, got %v", cleared)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, get("/dashboard", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != route.PathLogin {
		t.Fatalf("expected redirect to login after logout, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	auth := &stubAuth{loginErr: &api.Error{Code: api.CodeAuth, Status: http.StatusBadRequest, Message: "Invalid credentials"}}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}, "password": {"wrong"}}, nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatal("expected server message")
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "employee_session" && ck.Value != "" {
			t.Fatal("failed login should not write the session")
		}
	}
}

func TestLoginNetworkFailureUsesFallback(t *testing.T) {
	auth := &stubAuth{loginErr: &api.Error{Code: api.CodeNetwork, Err: errors.New("connection refused")}}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}, "password": {"secret"}}, nil))

	if w.Code != http.StatusBadGateway || !strings.Contains(w.Body.String(), MsgLoginFailed) {
		t.Fatalf("unexpected response: %d", w.Code)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	auth := &stubAuth{}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}}, nil))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), MsgCredentialsMissing) {
		t.Fatalf("unexpected response: %d", w.Code)
	}
	if auth.loginCalls != 0 {
		t.Fatalf("expected no API call, got %d", auth.loginCalls)
	}
}

func TestLoginRejectsBlankEmail(t *testing.T) {
	auth := &stubAuth{}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"   "}, "password": {"secret"}}, nil))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), MsgCredentialsMissing) {
		t.Fatalf("unexpected response: %d", w.Code)
	}
	if auth.loginCalls != 0 {
		t.Fatalf("expected no API call, got %d", auth.loginCalls)
	}
}

func TestLoginLockout(t *testing.T) {
	auth := &stubAuth{loginErr: &api.Error{Code: api.CodeAuth, Status: http.StatusUnauthorized}}
	router := newTestRouter(t, auth, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}, "password": {"wrong"}}, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"email": {"a@b.co"}, "password": {"wrong"}}, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if auth.loginCalls != 2 {
		t.Fatalf("expected 2 API calls, got %d", auth.loginCalls)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	auth := &stubAuth{}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/register", url.Values{
		"name":            {"Hukum"},
		"email":           {"h@cstech.in"},
		"password":        {"one"},
		"confirmPassword": {"two"},
	}, nil))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), MsgPasswordMismatch) {
		t.Fatalf("unexpected response: %d", w.Code)
	}
	if auth.registerCalls != 0 {
		t.Fatalf("expected no API call, got %d", auth.registerCalls)
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	auth := &stubAuth{}
	router := newTestRouter(t, auth, 5)

	cases := []url.Values{
		{"email": {"h@cstech.in"}, "password": {"one"}, "confirmPassword": {"one"}},
		{"name": {"  "}, "email": {"h@cstech.in"}, "password": {"one"}, "confirmPassword": {"one"}},
		{"name": {"Hukum"}, "email": {"h@cstech.in"}},
	}
	for i, values := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, postForm("/register", values, nil))
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), MsgFieldsMissing) {
			t.Fatalf("case %d: unexpected response: %d", i, w.Code)
		}
	}
	if auth.registerCalls != 0 {
		t.Fatalf("expected no API call, got %d", auth.registerCalls)
	}
}

func TestRegisterSuccessRedirectsToLogin(t *testing.T) {
	auth := &stubAuth{registerGrant: &session.Grant{}}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/register", url.Values{
		"name":            {"Hukum"},
		"email":           {"h@cstech.in"},
		"password":        {"pw"},
		"confirmPassword": {"pw"},
	}, nil))

	body := w.Body.String()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(body, "Registration successful") || !strings.Contains(body, `content="2;url=/login"`) {
		t.Fatalf("unexpected body: %s", body)
	}
	if auth.lastReg.Name != "Hukum" || auth.lastReg.Email != "h@cstech.in" {
		t.Fatalf("unexpected registration: %#v", auth.lastReg)
	}
}

func TestRegisterFailure(t *testing.T) {
	auth := &stubAuth{registerErr: &api.Error{Code: api.CodeAuth, Status: http.StatusConflict, Message: "User already exists"}}
	router := newTestRouter(t, auth, 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/register", url.Values{
		"name":            {"Hukum"},
		"email":           {"h@cstech.in"},
		"password":        {"pw"},
		"confirmPassword": {"pw"},
	}, nil))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "User already exists") {
		t.Fatalf("unexpected response: %d", w.Code)
	}
}
