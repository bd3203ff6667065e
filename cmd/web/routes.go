package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/employee-portal/internal/api"
	"github.com/yourusername/employee-portal/internal/auth"
	"github.com/yourusername/employee-portal/internal/config"
	"github.com/yourusername/employee-portal/internal/employee"
	"github.com/yourusername/employee-portal/internal/route"
	"github.com/yourusername/employee-portal/internal/session"
	"github.com/yourusername/employee-portal/internal/web"
)

const sessionCookieName = "employee_session"

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "employee-portal",
		"version": "0.1.0",
	})
}

// newSessionStore は設定に応じてクッキーまたは Redis のセッションストアを作成します。
// 戻り値の関数で Redis 接続を閉じます。
func newSessionStore(cfg *config.Config) (sessions.Store, func(), error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionStore != config.SessionStoreRedis {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(options)
		return store, func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SESSION_REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to session redis: %w", err)
	}

	store := session.NewRedisStore(rdb, []byte(cfg.SessionSecret))
	store.Options(options)
	return store, func() { _ = rdb.Close() }, nil
}

// setupRoutes は画面とJSONエンドポイントの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, logger *log.Logger) (func(), error) {
	store, cleanup, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	// c.ClientIP() はログイン試行の制限に使うため、X-Forwarded-For は設定したプロキシからのみ受け付ける
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		cleanup()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	// 大文字小文字や余分なスラッシュが異なるパスは正規のパスへリダイレクトする
	router.RedirectFixedPath = true

	// タイムアウトはリクエストの context と既定のトランスポートに任せる
	client := api.NewClient(cfg.BackendURL, nil, logger)
	guard := session.NewGuard(client, session.GuardOptions{
		CheckExpiry: cfg.SessionCheckExpiry,
		Logger:      logger,
	})
	authManager := auth.NewManager(cfg, guard, logger)
	employees := client.Employees()
	opts := employee.HandlerOptions{Logger: logger, MaxPhotoSize: cfg.MaxPhotoSize}

	router.SetHTMLTemplate(web.MustTemplates())
	router.StaticFS("/static", web.StaticFS())

	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	app := router.Group("/")
	app.Use(sessions.Sessions(sessionCookieName, store), session.Load(guard))

	// 画面はルート表の判定を経由する
	pages := app.Group("/", route.DefaultTable.Middleware())
	{
		// ログイン・登録時はまだ CSRF トークンが無いので検証しない
		pages.GET(route.PathLogin, authManager.LoginPage)
		pages.POST(route.PathLogin, authManager.Login)
		pages.GET(route.PathRegister, authManager.RegisterPage)
		pages.POST(route.PathRegister, authManager.Register)

		pages.GET(route.PathHome, web.HomeHandler)
		pages.GET(route.PathDashboard, web.DashboardHandler)
		pages.GET(route.PathEmployeeList, employee.ListHandler(employees, opts))
		pages.GET(route.PathCreateEmployee, employee.NewFormHandler())
		pages.POST(route.PathCreateEmployee, authManager.VerifyCSRF(), employee.CreateHandler(employees, opts))
		pages.GET(route.PathEditEmployee, employee.EditFormHandler(employees, opts))
		pages.POST(route.PathEditEmployee, authManager.VerifyCSRF(), employee.UpdateHandler(employees, opts))
	}

	actions := app.Group("/", route.RequireAuthenticated(), authManager.VerifyCSRF())
	{
		actions.POST("/logout", authManager.Logout)
		actions.POST("/delete-employee/:id", employee.DeleteHandler(employees, opts))
	}

	apiGroup := app.Group("/api")
	// CORSミドルウェアの設定（許可オリジンが無ければ同一オリジンのみ）
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"}
		apiGroup.Use(cors.New(corsConfig))
	}
	{
		apiGroup.GET("/session", handleSession)
		apiGroup.GET("/routes/resolve", handleResolve)
		// プリフライトは cors ミドルウェアが応答する
		apiGroup.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	router.NoRoute(sessions.Sessions(sessionCookieName, store), session.Load(guard), route.NoRoute())

	return cleanup, nil
}

// handleSession は現在の認証状態を返します。トークンは返しません。
func handleSession(c *gin.Context) {
	sess := session.FromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": sess.Authenticated(),
		"state":         sess.State.String(),
		"userName":      sess.UserName,
		"csrfToken":     sess.CSRFToken,
	})
}

// handleResolve は path に対するルート判定の結果を返します。
func handleResolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "path is required",
		})
		return
	}

	action := route.Resolve(path, session.FromContext(c).State)
	resp := gin.H{"kind": action.Kind.String()}
	if action.Kind == route.ActionMount {
		resp["view"] = string(action.View)
		resp["params"] = action.Params
	} else {
		resp["target"] = action.Target
	}
	c.JSON(http.StatusOK, resp)
}
