package economy

import (
	"context"
	"sync"

	"github.com/sunusimusa/scratch-app/internal/common"
)

// MemoryStore keeps records in process memory. Used by tests and STORE_DRIVER=memory.
// Records are copied on the way in and out, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record // session id → record
	codes   map[string]string  // referral code → session id
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		codes:   make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.SessionID]; ok {
		return common.ErrSessionExists
	}
	if _, ok := s.codes[rec.ReferralCode]; ok {
		return common.ErrDuplicateReferralCode
	}
	s.records[rec.SessionID] = rec.Clone()
	s.codes[rec.ReferralCode] = rec.SessionID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) FindByReferralCode(_ context.Context, code string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.codes[code]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return s.records[sessionID].Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkVersion(rec); err != nil {
		return err
	}
	s.put(rec)
	return nil
}

func (s *MemoryStore) SavePair(_ context.Context, a, b *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkVersion(a); err != nil {
		return err
	}
	if err := s.checkVersion(b); err != nil {
		return err
	}
	s.put(a)
	s.put(b)
	return nil
}

func (s *MemoryStore) ForEach(ctx context.Context, fn func(*Record) error) error {
	s.mu.RLock()
	snapshot := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		snapshot = append(snapshot, rec.Clone())
	}
	s.mu.RUnlock()

	for _, rec := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// checkVersion must be called with mu held.
func (s *MemoryStore) checkVersion(rec *Record) error {
	stored, ok := s.records[rec.SessionID]
	if !ok {
		return common.ErrRecordNotFound
	}
	if stored.Version != rec.Version {
		return common.ErrConflict
	}
	return nil
}

// put must be called with mu held, after checkVersion.
func (s *MemoryStore) put(rec *Record) {
	rec.Version++
	s.records[rec.SessionID] = rec.Clone()
}
