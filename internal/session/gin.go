package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// gin.Context でセッションを共有するためのキー
const (
	ContextSessionKey = "session.current"
	ContextStoreKey   = "session.store"
)

type ginStore struct {
	s sessions.Session
}

// NewGinStore は gin-contrib/sessions のセッションを Store として扱うアダプタを返します。
func NewGinStore(s sessions.Session) Store {
	return &ginStore{s: s}
}

func (g *ginStore) Get(key string) string {
	v, _ := g.s.Get(key).(string)
	return v
}

func (g *ginStore) Set(key, value string) { g.s.Set(key, value) }

func (g *ginStore) Delete(key string) { g.s.Delete(key) }

func (g *ginStore) Clear() { g.s.Clear() }

func (g *ginStore) Save() error { return g.s.Save() }

// Invalidate は次の Save でセッションを破棄し、クッキーを失効させます。
func (g *ginStore) Invalidate() {
	g.s.Options(sessions.Options{Path: "/", MaxAge: -1})
}

// Load はリクエストごとに Guard.Initialize を実行し、結果をコンテキストに格納するミドルウェアです。
// sessions.Sessions の後に登録する必要があります。
func Load(guard *Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := NewGinStore(sessions.Default(c))
		c.Set(ContextStoreKey, store)
		c.Set(ContextSessionKey, guard.Initialize(store))
		c.Next()
	}
}

// FromContext はコンテキストのセッションを返します。未設定なら未認証の空セッションを返します。
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(ContextSessionKey); ok {
		if sess, ok := v.(*Session); ok && sess != nil {
			return sess
		}
	}
	return &Session{State: Unauthenticated}
}

// StoreFromContext はコンテキストの Store を返します。
func StoreFromContext(c *gin.Context) (Store, bool) {
	v, ok := c.Get(ContextStoreKey)
	if !ok {
		return nil, false
	}
	store, ok := v.(Store)
	return store, ok
}

// SetCurrent はログイン/ログアウト後の状態でコンテキストを更新します。
func SetCurrent(c *gin.Context, sess *Session) {
	c.Set(ContextSessionKey, sess)
}

// PopFlash は一度だけ表示するメッセージを取り出して削除します。
func PopFlash(store Store) string {
	msg := store.Get(KeyFlash)
	if msg == "" {
		return ""
	}
	store.Delete(KeyFlash)
	_ = store.Save()
	return msg
}
