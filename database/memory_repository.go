package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nba-predictions-go/models"
)

// MemoryPredictionRepository keeps predictions in process memory.
// It backs development mode and is the fallback when no database is reachable.
type MemoryPredictionRepository struct {
	mu          sync.RWMutex
	predictions []models.Prediction
}

// NewMemoryPredictionRepository creates an empty repository
func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{}
}

// Insert stores a copy of the prediction with a fresh id
func (r *MemoryPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) (*models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *prediction
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Outcome != nil {
		v := *stored.Outcome
		stored.Outcome = &v
	}

	r.mu.Lock()
	r.predictions = append(r.predictions, stored)
	r.mu.Unlock()

	out := stored
	return &out, nil
}

// QueryByUser returns a user's predictions, newest first
func (r *MemoryPredictionRepository) QueryByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return r.collect(ctx, func(p *models.Prediction) bool { return p.UserID == userID })
}

// QueryByTeam returns every prediction on a team, newest first
func (r *MemoryPredictionRepository) QueryByTeam(ctx context.Context, teamName string) ([]models.Prediction, error) {
	return r.collect(ctx, func(p *models.Prediction) bool { return p.TeamName == teamName })
}

// QueryAll returns every prediction, newest first
func (r *MemoryPredictionRepository) QueryAll(ctx context.Context) ([]models.Prediction, error) {
	return r.collect(ctx, func(*models.Prediction) bool { return true })
}

func (r *MemoryPredictionRepository) collect(ctx context.Context, keep func(*models.Prediction) bool) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]models.Prediction, 0, len(r.predictions))
	// walk backwards so equal timestamps still come out newest-inserted first
	for i := len(r.predictions) - 1; i >= 0; i-- {
		if keep(&r.predictions[i]) {
			out = append(out, r.predictions[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryUserRepository implements UserStore in memory
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by id
}

// NewMemoryUserRepository creates an empty user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByID retrieves a user by their ID
func (r *MemoryUserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

// GetUserByEmail retrieves a user by their email address
func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.find(func(u *models.User) bool { return u.Email == email })
}

// GetUserByUsername retrieves a user by their username
func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

// conflicts reports whether another account already owns the email or username
func (r *MemoryUserRepository) conflicts(user *models.User) bool {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email || u.Username == user.Username {
			return true
		}
	}
	return false
}

// CreateUser creates a new user
func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	if _, exists := r.users[user.ID]; exists || r.conflicts(user) {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

// UpdateUser updates an existing user
func (r *MemoryUserRepository) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return ErrNotFound
	}
	user.Email = models.NormalizeEmail(user.Email)
	if r.conflicts(user) {
		return ErrDuplicate
	}

	user.UpdatedAt = time.Now().UTC()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}
