package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator は外部の認証APIです。
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*Grant, error)
	Register(ctx context.Context, reg Registration) (*Grant, error)
}

// GuardOptions は Guard の挙動を調整します。
type GuardOptions struct {
	// CheckExpiry が true の場合、exp 付きの JWT が期限切れなら未認証として扱います。
	// false の場合はトークンの有無だけで判定します。
	CheckExpiry bool
	Logger      *log.Logger
	Now         func() time.Time
}

// Guard はセッションの初期化と状態遷移（ログイン/登録/ログアウト）を担います。
type Guard struct {
	auth        Authenticator
	checkExpiry bool
	logger      *log.Logger
	now         func() time.Time
}

// NewGuard は Guard を作成します。
func NewGuard(auth Authenticator, opts GuardOptions) *Guard {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Guard{
		auth:        auth,
		checkExpiry: opts.CheckExpiry,
		logger:      logger,
		now:         now,
	}
}

// Initialize は永続化された属性を読み、認証状態を導出します。
// ネットワーク呼び出しは行いません。
func (g *Guard) Initialize(store Store) *Session {
	sess := &Session{
		Token:     store.Get(KeyToken),
		UserName:  store.Get(KeyUserName),
		CSRFToken: store.Get(KeyCSRF),
		State:     Unauthenticated,
	}
	if sess.Token == "" {
		return sess
	}
	if g.checkExpiry && tokenExpired(sess.Token, g.now()) {
		return sess
	}
	sess.State = Authenticated
	return sess
}

// Login は認証APIに委譲し、成功時にトークンを永続化します。
// 失敗時は Store に何も書き込みません。
func (g *Guard) Login(ctx context.Context, store Store, creds Credentials) (*Session, error) {
	grant, err := g.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return g.establish(store, grant)
}

// Register は登録APIに委譲します。応答にトークンが含まれていればログインと同様に永続化し、
// 含まれていなければ未認証のセッションを返します。
func (g *Guard) Register(ctx context.Context, store Store, reg Registration) (*Session, error) {
	grant, err := g.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if grant == nil || grant.Token == "" {
		return g.Initialize(store), nil
	}
	return g.establish(store, grant)
}

// Invalidator は保存先ごとセッションを破棄できる Store です。
type Invalidator interface {
	Invalidate()
}

// Logout はすべてのセッション属性を削除します。ネットワーク呼び出しは行いません。
// Store が Invalidator なら、セッション自体も破棄します。
func (g *Guard) Logout(store Store) error {
	store.Clear()
	if inv, ok := store.(Invalidator); ok {
		inv.Invalidate()
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (g *Guard) establish(store Store, grant *Grant) (*Session, error) {
	if grant == nil || grant.Token == "" {
		return nil, ErrMissingToken
	}

	csrf, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	store.Clear()
	store.Set(KeyToken, grant.Token)
	store.Set(KeyAuthStatus, authStatusAuthenticated)
	if grant.UserName != "" {
		store.Set(KeyUserName, grant.UserName)
	}
	store.Set(KeyCSRF, csrf)
	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &Session{
		Token:     grant.Token,
		UserName:  grant.UserName,
		CSRFToken: csrf,
		State:     Authenticated,
	}, nil
}

// tokenExpired は JWT として解釈できるトークンの exp を確認します。
// 署名は検証しません（検証はバックエンドの責務）。JWT でない不透明なトークンは期限切れとみなしません。
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
