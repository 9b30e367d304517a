package store

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"taskdesk/internal/metrics"
)

// Persisted keys.
const (
	KeyUsers         = "users"
	KeyProjects      = "projects"
	KeyTasks         = "tasks"
	KeyNotifications = "notifications"
	KeySeeded        = "seeded"
	KeyDeadlineSent  = "deadline-sent"
	KeyActivity      = "activity"
)

// Store is the JSON adapter over a Backend. Reads never fail: missing or corrupt values
// degrade to the caller's fallback. Writes never fail either: errors are logged and dropped.
type Store struct {
	backend Backend
	log     *zap.Logger
}

func New(b Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: b, log: log}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Close() error { return s.backend.Close() }

// raw returns the stored bytes, or ok=false when absent, unreadable or JSON null.
func (s *Store) raw(ctx context.Context, key string) ([]byte, bool) {
	b, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn("store read failed, using fallback", zap.String("key", key), zap.Error(err))
		metrics.ObserveFallback(key, "read")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, false
	}
	return b, true
}

// Load decodes the value under key into T, returning fallback when absent or undecodable.
func Load[T any](ctx context.Context, s *Store, key string, fallback T) T {
	b, ok := s.raw(ctx, key)
	if !ok {
		return fallback
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		s.log.Warn("store value corrupt, using fallback", zap.String("key", key), zap.Error(err))
		metrics.ObserveFallback(key, "decode")
		return fallback
	}
	return out
}

// LoadArray is Load for collections: anything but a JSON array yields fallback.
func LoadArray[T any](ctx context.Context, s *Store, key string, fallback []T) []T {
	b, ok := s.raw(ctx, key)
	if !ok {
		return fallback
	}
	if b[0] != '[' {
		s.log.Warn("store value is not an array, using fallback", zap.String("key", key))
		metrics.ObserveFallback(key, "shape")
		return fallback
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		s.log.Warn("store value corrupt, using fallback", zap.String("key", key), zap.Error(err))
		metrics.ObserveFallback(key, "decode")
		return fallback
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// Save encodes value and writes it under key.
func (s *Store) Save(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		s.log.Error("store encode failed", zap.String("key", key), zap.Error(err))
		metrics.ObserveWriteFailure(key, "encode")
		return
	}
	if err := s.backend.Set(ctx, key, b); err != nil {
		s.log.Error("store write failed", zap.String("key", key), zap.Error(err))
		metrics.ObserveWriteFailure(key, "set")
	}
}

func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.log.Error("store delete failed", zap.String("key", key), zap.Error(err))
		metrics.ObserveWriteFailure(key, "delete")
	}
}

// HasField reports whether key holds an array with at least one object carrying a
// non-empty value for field. null and "" count as absent.
func (s *Store) HasField(ctx context.Context, key, field string) bool {
	for _, rec := range LoadArray[map[string]json.RawMessage](ctx, s, key, nil) {
		v, ok := rec[field]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte(`""`)) {
			continue
		}
		return true
	}
	return false
}
