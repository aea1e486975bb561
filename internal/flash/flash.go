// Package flash carries one-shot success and error messages from a mutation
// to the next rendered response.
package flash

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Flash struct {
	Success string `json:"success"`
	Error   string `json:"error"`
}

func (f Flash) Empty() bool { return f.Success == "" && f.Error == "" }

func Success(msg string) Flash { return Flash{Success: msg} }

func Failure(msg string) Flash { return Flash{Error: msg} }

// Store keeps a flash until it is read once.
type Store interface {
	Put(w http.ResponseWriter, r *http.Request, f Flash) error
	Pop(w http.ResponseWriter, r *http.Request) (Flash, error)
}

const (
	cookieName        = "flash"
	sessionCookieName = "flash_session"
)

// CookieStore keeps the flash in a short-lived cookie on the client.
type CookieStore struct {
	TTL time.Duration
}

func NewCookieStore() *CookieStore {
	return &CookieStore{TTL: 5 * time.Minute}
}

func (s *CookieStore) Put(w http.ResponseWriter, r *http.Request, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Pop(w http.ResponseWriter, r *http.Request) (Flash, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Flash{}, nil
	}
	clearCookie(w, cookieName)

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Flash{}, fmt.Errorf("decode flash cookie: %w", err)
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil {
		return Flash{}, fmt.Errorf("decode flash cookie: %w", err)
	}
	return f, nil
}

// RedisStore keeps the flash server-side under a per-browser session id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(w http.ResponseWriter, r *http.Request, f Flash) error {
	sid := sessionID(r)
	if sid == "" {
		sid = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := s.client.Set(r.Context(), key(sid), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

// Pop reads and deletes the flash in one GETDEL.
func (s *RedisStore) Pop(w http.ResponseWriter, r *http.Request) (Flash, error) {
	sid := sessionID(r)
	if sid == "" {
		return Flash{}, nil
	}
	b, err := s.client.GetDel(r.Context(), key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Flash{}, nil
	}
	if err != nil {
		return Flash{}, fmt.Errorf("load flash: %w", err)
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil {
		return Flash{}, fmt.Errorf("decode flash: %w", err)
	}
	return f, nil
}

// Ping reports whether Redis is reachable within timeout.
func Ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func key(sid string) string { return "flash:" + sid }

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
