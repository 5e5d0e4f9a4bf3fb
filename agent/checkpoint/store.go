package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrStaleCheckpoint = errors.New("stale checkpoint")

// Store is the persistence contract used by the supervisor.
//
// Commit is optimistic-concurrency controlled: the caller supplies the
// sequence it loaded; if the stored sequence has advanced since, Commit fails
// with ErrStaleCheckpoint and the in-flight call must be rejected rather than
// overwrite concurrent progress. On success the sequence increments by one.
type Store interface {
	Load(ctx context.Context, threadID string) (*ThreadState, error)
	Commit(ctx context.Context, expectedSeq int64, st *ThreadState) error
}

// MemoryStore keeps checkpoints in process memory. Load returns an empty
// state with sequence 0 for unseen thread ids; threads are never destroyed.
type MemoryStore struct {
	mu      sync.Mutex
	threads map[string]*ThreadState
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string]*ThreadState),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, ErrInvalidThread
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.threads[threadID]; ok {
		return st.Clone(), nil
	}
	return NewThreadState(threadID, s.now()), nil
}

func (s *MemoryStore) Commit(ctx context.Context, expectedSeq int64, st *ThreadState) error {
	if st == nil {
		return ErrNilState
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("invalid thread state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var currentSeq int64
	if cur, ok := s.threads[st.ThreadID]; ok {
		currentSeq = cur.Sequence
	}
	if currentSeq != expectedSeq {
		return fmt.Errorf("%w: thread=%s expected=%d stored=%d",
			ErrStaleCheckpoint, st.ThreadID, expectedSeq, currentSeq)
	}

	st.Sequence = expectedSeq + 1
	st.Touch(s.now())
	s.threads[st.ThreadID] = st.Clone()
	return nil
}
