package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/jotbox/jotbox/internal/model"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
)

// Map-backed repositories for local development and tests. State is lost on
// restart.

type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return appErr.ErrConflict
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepo) UpdateLastProvider(ctx context.Context, userID, provider string, mtime int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return appErr.ErrNotFound
	}
	user.LastProvider = provider
	user.Mtime = mtime
	r.byID[userID] = user
	return nil
}

type MemoryNoteRepo struct {
	mu     sync.RWMutex
	byUser map[string][]model.Note
}

func NewMemoryNoteRepo() *MemoryNoteRepo {
	return &MemoryNoteRepo{byUser: make(map[string][]model.Note)}
}

func (r *MemoryNoteRepo) Create(ctx context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[note.UserID] = append(r.byUser[note.UserID], *note)
	return nil
}

func (r *MemoryNoteRepo) ListByUser(ctx context.Context, userID string) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byUser[userID]
	notes := make([]model.Note, len(list))
	copy(notes, list)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Ctime != notes[j].Ctime {
			return notes[i].Ctime > notes[j].Ctime
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (r *MemoryNoteRepo) DeleteByUser(ctx context.Context, userID, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byUser[userID]
	for i, note := range list {
		if note.ID == noteID {
			r.byUser[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return appErr.ErrNotFound
}

type MemoryOtpRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.OtpCode
}

func NewMemoryOtpRepo() *MemoryOtpRepo {
	return &MemoryOtpRepo{byEmail: make(map[string]model.OtpCode)}
}

func (r *MemoryOtpRepo) Save(ctx context.Context, code *model.OtpCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[code.Email] = *code
	return nil
}

func (r *MemoryOtpRepo) GetByEmail(ctx context.Context, email string) (*model.OtpCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.byEmail[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &code, nil
}

func (r *MemoryOtpRepo) IncrementAttempts(ctx context.Context, email, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.byEmail[email]
	if !ok || code.ID != id {
		return 0, appErr.ErrNotFound
	}
	code.Attempts++
	r.byEmail[email] = code
	return code.Attempts, nil
}

func (r *MemoryOtpRepo) Consume(ctx context.Context, email, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.byEmail[email]
	if !ok || code.ID != id {
		return appErr.ErrNotFound
	}
	delete(r.byEmail, email)
	return nil
}
