// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile は読み込む .env ファイルの既定名です。
const DefaultEnvFile = ".env.local"

// セッションストアの種類
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // Webサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// バックエンドAPI
	BackendURL string // REST API のベースURL

	// セッション設定
	SessionSecret      string // セッションクッキー署名用の秘密鍵
	SessionStore       string // cookie または redis
	SessionRedisURL    string // SessionStore=redis の接続URL
	SessionMaxAge      int    // セッションクッキーの有効期間（秒）
	SessionCheckExpiry bool   // JWT の exp を見て期限切れトークンを未認証扱いにする

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// X-Forwarded-For を信頼するプロキシ（カンマ区切り、空なら信頼しない）
	TrustedProxies string

	// 入力制限
	MaxPhotoSize     int64 // 社員写真の最大サイズ（バイト）
	LoginMaxAttempts int   // 15分あたりのログイン失敗上限（0で無効）
}

// Load は環境変数から設定を読み込みます。
// envFile が存在する場合はそこから読み込みます（空なら .env.local）。
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	loadEnvFile(envFile)

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// バックエンドAPI
		BackendURL: strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),

		// セッション設定
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", SessionStoreCookie)),
		SessionRedisURL:    getEnv("SESSION_REDIS_URL", ""),
		SessionMaxAge:      getEnvAsInt("SESSION_MAX_AGE", 7*24*60*60), // 7日
		SessionCheckExpiry: getEnvAsBool("SESSION_CHECK_EXPIRY", false),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),

		// 入力制限
		MaxPhotoSize:     getEnvAsInt64("MAX_PHOTO_SIZE", 5*1024*1024), // 5MB
		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Printf("SESSION_SECRET is not set; using a random key (sessions will not survive a restart)")
		config.SessionSecret = secret
	}

	return config, nil
}

func loadEnvFile(name string) {
	if err := godotenv.Load(name); err == nil {
		return
	}
	if filepath.IsAbs(name) {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, name))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreCookie:
	case SessionStoreRedis:
		if c.SessionRedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %q", c.SessionStore)
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}

	// ローカル開発では秘密鍵は任意
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.BackendURL == "" {
			return fmt.Errorf("BACKEND_URL is required in release mode")
		}
	}

	return nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList は信頼するプロキシを配列で返します。空なら nil です。
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
