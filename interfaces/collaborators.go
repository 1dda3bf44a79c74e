package interfaces

import (
	"context"

	"nba-predictions-go/models"
)

// PredictionStore persists prediction records.
// Query methods return records newest first.
type PredictionStore interface {
	Insert(ctx context.Context, prediction *models.Prediction) (*models.Prediction, error)
	QueryByUser(ctx context.Context, userID string) ([]models.Prediction, error)
	QueryByTeam(ctx context.Context, teamName string) ([]models.Prediction, error)
	QueryAll(ctx context.Context) ([]models.Prediction, error)
}

// UserStore persists accounts
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// AuthSession identifies the user behind a request; nil means signed out
type AuthSession interface {
	CurrentUser(ctx context.Context) *models.User
}

// TeamCatalog is the static, ordered team list
type TeamCatalog interface {
	Teams() []models.Team
	Contains(name string) bool
	Lookup(name string) (models.Team, bool)
	Opponents(subject string) []models.Team
	Filter(query, filter string) []models.Team
}

// Collaborators bundles the external dependencies handed to the stats and
// wizard components
type Collaborators struct {
	Session AuthSession
	Store   PredictionStore
	Catalog TeamCatalog
}
