// Package auth はログイン・登録・ログアウトの画面ハンドラーと CSRF 検証を提供します。
package auth

import (
	"log"
	"sync"
	"time"

	"github.com/yourusername/employee-portal/internal/config"
	"github.com/yourusername/employee-portal/internal/session"
)

const (
	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "csrf_token"
)

var (
	loginWindow  = 15 * time.Minute
	lockDuration = 10 * time.Minute
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Manager は認証画面の処理とログイン試行回数の状態をまとめた構造体です。
type Manager struct {
	guard       *session.Guard
	maxAttempts int
	logger      *log.Logger

	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, guard *session.Guard, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		guard:       guard,
		maxAttempts: cfg.LoginMaxAttempts,
		logger:      logger,
		attempts:    make(map[string]*attemptState),
	}
}

func (m *Manager) checkLock(ip string) time.Duration {
	if m.maxAttempts <= 0 {
		return 0
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[ip]
	if !ok {
		return 0
	}
	if time.Now().After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

func (m *Manager) recordFailure(ip string) int {
	if m.maxAttempts <= 0 {
		return 0
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	now := time.Now()
	state, ok := m.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		m.attempts[ip] = state
	}

	state.count++
	if state.count >= m.maxAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = m.maxAttempts
	}

	return max(m.maxAttempts-state.count, 0)
}

func (m *Manager) resetAttempts(ip string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, ip)
}
