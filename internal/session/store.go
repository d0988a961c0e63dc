package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"
)

const sessionIDKey = "sid"

// StoreConfig は Store の初期化設定です。
type StoreConfig struct {
	CookieName     string
	Secret         []byte
	EncryptKey     []byte // 空の場合は署名のみで暗号化しない
	TTL            time.Duration
	IsSecureCookie bool
}

// Store はクッキーのセッションIDとメモリ上の State を対応付けます。
// State はアイドル時間が TTL を超えると破棄され、ディスクには書き出しません。
type Store struct {
	cookieName string
	cookies    *sessions.CookieStore
	states     *cache.Cache
}

// NewStore は Store を生成します。
func NewStore(cfg StoreConfig) *Store {
	keyPairs := [][]byte{cfg.Secret}
	if len(cfg.EncryptKey) > 0 {
		keyPairs = append(keyPairs, cfg.EncryptKey)
	}
	cookies := sessions.NewCookieStore(keyPairs...)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsSecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{
		cookieName: cfg.CookieName,
		cookies:    cookies,
		states:     cache.New(cfg.TTL, cfg.TTL),
	}
}

// Load はリクエストのセッションに紐づく State を返します。無ければ新しく作りクッキーを発行します。
func (s *Store) Load(w http.ResponseWriter, r *http.Request) (*State, error) {
	sess, err := s.cookies.Get(r, s.cookieName)
	if err != nil {
		// 署名鍵の変更などで復号できないクッキーは新規セッションとして扱う
		slog.WarnContext(r.Context(), "Discarding unreadable session cookie", "error", err)
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		if v, found := s.states.Get(id); found {
			st := v.(*State)
			s.states.SetDefault(id, st)
			return st, nil
		}
	}

	st := NewState(uuid.NewString())
	s.states.SetDefault(st.ID(), st)

	sess.Values[sessionIDKey] = st.ID()
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session cookie: %w", err)
	}
	slog.DebugContext(r.Context(), "Session created", "session_id", st.ID())
	return st, nil
}

// Len は保持中のセッション数を返します。
func (s *Store) Len() int {
	return s.states.ItemCount()
}
