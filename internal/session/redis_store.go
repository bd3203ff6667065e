package session

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "session:"
)

// RedisStore はセッション属性を Redis に保存し、クッキーには署名済みのセッションIDだけを載せる
// gin-contrib/sessions 用のストアです。
type RedisStore struct {
	rdb     *redis.Client
	codecs  []securecookie.Codec
	options *gsessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

// NewRedisStore は RedisStore を作成します。keyPairs はクッキー署名鍵です。
func NewRedisStore(rdb *redis.Client, keyPairs ...[]byte) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		codecs: securecookie.CodecsFromPairs(keyPairs...),
		options: &gsessions.Options{
			Path:   "/",
			MaxAge: 86400 * 7,
		},
	}
}

// Options はクッキー属性を設定します。
func (s *RedisStore) Options(opts sessions.Options) {
	s.options = opts.ToGorillaOptions()
}

// Get はリクエスト内でキャッシュされたセッションを返します。
func (s *RedisStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New はクッキーのセッションIDから Redis の内容を復元します。
// クッキーが無い・改ざんされている・Redis に存在しない場合は空の新規セッションを返します。
func (s *RedisStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	sess := gsessions.NewSession(s, name)
	opts := *s.options
	sess.Options = &opts
	sess.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.codecs...); err != nil {
		return sess, nil
	}

	found, err := s.load(r.Context(), id, sess)
	if err != nil {
		return sess, err
	}
	if found {
		sess.ID = id
		sess.IsNew = false
	}
	return sess, nil
}

// Save はセッションを Redis に保存し、セッションIDをクッキーに書き込みます。
// MaxAge < 0 の場合は Redis から削除しクッキーを失効させます。
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, sess *gsessions.Session) error {
	ctx := r.Context()
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.rdb.Del(ctx, redisKey(sess.ID)).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, gsessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	// 認証情報が変わったら別IDで保存し、ログイン前のIDを使えなくする
	if sess.ID != "" {
		rotate, err := s.credentialsChanged(ctx, sess)
		if err != nil {
			return err
		}
		if rotate {
			if err := s.rdb.Del(ctx, redisKey(sess.ID)).Err(); err != nil {
				return err
			}
			sess.ID = ""
		}
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if err := s.store(ctx, sess); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, gsessions.NewCookie(sess.Name(), encoded, sess.Options))
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string, sess *gsessions.Session) (bool, error) {
	values, err := s.persisted(ctx, id)
	if err != nil || values == nil {
		return false, err
	}
	sess.Values = values
	return true, nil
}

// persisted は保存済みの属性を返します。存在しなければ nil です。
func (s *RedisStore) persisted(ctx context.Context, id string) (map[interface{}]interface{}, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	values := make(map[interface{}]interface{})
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return values, nil
}

// credentialsChanged は保存しようとしているトークンまたは CSRF トークンが
// Redis 上の値と異なるかを返します。新しいトークンが無い場合は false です。
func (s *RedisStore) credentialsChanged(ctx context.Context, sess *gsessions.Session) (bool, error) {
	token, _ := sess.Values[KeyToken].(string)
	if token == "" {
		return false, nil
	}
	old, err := s.persisted(ctx, sess.ID)
	if err != nil {
		return false, err
	}
	for _, key := range []string{KeyToken, KeyCSRF} {
		prev, _ := old[key].(string)
		next, _ := sess.Values[key].(string)
		if prev != next {
			return true, nil
		}
	}
	return false, nil
}

func (s *RedisStore) store(ctx context.Context, sess *gsessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sess.Values); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ttl := time.Duration(0)
	if sess.Options != nil && sess.Options.MaxAge > 0 {
		ttl = time.Duration(sess.Options.MaxAge) * time.Second
	}
	return s.rdb.Set(ctx, redisKey(sess.ID), buf.Bytes(), ttl).Err()
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}
