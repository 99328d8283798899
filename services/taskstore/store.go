package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is keyed persistence of per-user task state. Mutations go through
// Update, which serializes per user key so the dedup and single-current-
// artifact invariants hold even when the host allows concurrent requests
// from the same user.
type Store interface {
	Get(ctx context.Context, userID string) (UserState, error)
	Put(ctx context.Context, state UserState) error
	Update(ctx context.Context, userID string, fn func(*UserState) error) (UserState, error)
	Clear(ctx context.Context, userID string) error
}

type gormStore struct {
	db    *gorm.DB
	locks sync.Map // userID -> *sync.Mutex
}

func NewStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&UserStateRecord{}); err != nil {
		return nil, err
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) lock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *gormStore) Get(ctx context.Context, userID string) (UserState, error) {
	var record UserStateRecord
	err := s.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserState{UserID: userID, Artifacts: map[string]GeneratedArtifact{}}, nil
	}
	if err != nil {
		return UserState{}, err
	}

	var state UserState
	if err := json.Unmarshal(record.State, &state); err != nil {
		return UserState{}, err
	}
	if state.Artifacts == nil {
		state.Artifacts = map[string]GeneratedArtifact{}
	}
	state.UserID = userID
	return state, nil
}

func (s *gormStore) Put(ctx context.Context, state UserState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	record := UserStateRecord{UserID: state.UserID, State: raw}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *gormStore) Update(ctx context.Context, userID string, fn func(*UserState) error) (UserState, error) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.Get(ctx, userID)
	if err != nil {
		return UserState{}, err
	}

	if err := fn(&state); err != nil {
		return UserState{}, err
	}

	if err := s.Put(ctx, state); err != nil {
		return UserState{}, err
	}
	return state, nil
}

func (s *gormStore) Clear(ctx context.Context, userID string) error {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	err := s.db.WithContext(ctx).Delete(&UserStateRecord{}, "user_id = ?", userID).Error
	if err != nil {
		return err
	}

	zap.L().Info("cleared task history", zap.String("user_id", userID))
	return nil
}
