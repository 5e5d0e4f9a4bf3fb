package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type threadCheckpoint struct {
	bun.BaseModel `bun:"table:thread_checkpoints,alias:tc"`

	ThreadID  string          `bun:"thread_id,pk"`
	Sequence  int64           `bun:"sequence,notnull"`
	State     json.RawMessage `bun:"state,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// BunStore persists one checkpoint row per thread in Postgres. Optimistic
// concurrency rides on a conditional UPDATE against the expected sequence.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

func NewBunStore(db bun.IDB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &BunStore{db: db, now: time.Now}, nil
}

// Init creates the checkpoint table if it does not exist.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*threadCheckpoint)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create thread_checkpoints: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, ErrInvalidThread
	}

	rec := new(threadCheckpoint)
	err := s.db.NewSelect().
		Model(rec).
		Where("thread_id = ?", threadID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return NewThreadState(threadID, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint thread=%s: %w", threadID, err)
	}

	var st ThreadState
	if err := json.Unmarshal(rec.State, &st); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint thread=%s: %w", threadID, err)
	}
	st.Sequence = rec.Sequence
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid checkpoint loaded from store: %w", err)
	}
	return &st, nil
}

func (s *BunStore) Commit(ctx context.Context, expectedSeq int64, st *ThreadState) error {
	if st == nil {
		return ErrNilState
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("invalid thread state: %w", err)
	}

	st.Sequence = expectedSeq + 1
	st.Touch(s.now())

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal checkpoint thread=%s: %w", st.ThreadID, err)
	}

	rec := &threadCheckpoint{
		ThreadID:  st.ThreadID,
		Sequence:  st.Sequence,
		State:     payload,
		UpdatedAt: st.UpdatedAt,
	}

	if expectedSeq == 0 {
		res, err := s.db.NewInsert().
			Model(rec).
			On("CONFLICT (thread_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert checkpoint thread=%s: %w", st.ThreadID, err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return fmt.Errorf("%w: thread=%s expected=0", ErrStaleCheckpoint, st.ThreadID)
		}
		return nil
	}

	res, err := s.db.NewUpdate().
		Model(rec).
		Column("sequence", "state", "updated_at").
		Where("thread_id = ?", st.ThreadID).
		Where("sequence = ?", expectedSeq).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update checkpoint thread=%s: %w", st.ThreadID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: thread=%s expected=%d", ErrStaleCheckpoint, st.ThreadID, expectedSeq)
	}
	return nil
}
