package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"nba-predictions-go/database"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "password123"

var demoAccounts = []struct {
	Username string
	Email    string
}{
	{"courtvision", "courtvision@gmail.com"},
	{"fastbreak", "fastbreak@yahoo.com"},
	{"sixthman", "sixthman@gmail.com"},
	{"buzzerbeater", "buzzerbeater@gmail.com"},
}

// Seeder fills an empty store with demo accounts and predictions
type Seeder struct {
	users       interfaces.UserStore
	predictions interfaces.PredictionStore
	catalog     interfaces.TeamCatalog
	rng         *rand.Rand
	logger      *logging.Logger
}

// NewSeeder creates a seeder; seed fixes the random sequence
func NewSeeder(users interfaces.UserStore, predictions interfaces.PredictionStore, catalog interfaces.TeamCatalog, seed uint64) *Seeder {
	return &Seeder{
		users:       users,
		predictions: predictions,
		catalog:     catalog,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:      logging.WithPrefix("Seeder"),
	}
}

// SeedUsers creates the demo accounts that do not exist yet
func (s *Seeder) SeedUsers(ctx context.Context) ([]*models.User, error) {
	var existingCount, createdCount int
	users := make([]*models.User, 0, len(demoAccounts))

	for _, account := range demoAccounts {
		existing, err := s.users.GetUserByEmail(ctx, account.Email)
		if err == nil {
			existingCount++
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("look up %s: %w", account.Email, err)
		}

		user := &models.User{
			ID:       uuid.NewString(),
			Username: account.Username,
			Email:    account.Email,
		}
		if err := user.HashPassword(DemoPassword); err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", account.Email, err)
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create %s: %w", account.Email, err)
		}

		s.logger.Infof("Created user %s (%s)", user.Username, user.Email)
		createdCount++
		users = append(users, user)
	}

	s.logger.Infof("Completed seeding users - %d existing, %d created", existingCount, createdCount)
	return users, nil
}

// SeedPredictions records perUser random graded predictions for each user,
// spread over the last 30 days. It does nothing when predictions already exist.
func (s *Seeder) SeedPredictions(ctx context.Context, users []*models.User, perUser int) (int, error) {
	existing, err := s.predictions.QueryAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Infof("Store already holds %d predictions, skipping", len(existing))
		return 0, nil
	}

	teams := s.catalog.Teams()
	now := time.Now().UTC()
	created := 0

	for _, user := range users {
		for i := 0; i < perUser; i++ {
			team := teams[s.rng.IntN(len(teams))]
			opponents := s.catalog.Opponents(team.Name)
			opponent := opponents[s.rng.IntN(len(opponents))]

			bet := models.BetFor
			if s.rng.IntN(2) == 0 {
				bet = models.BetAgainst
			}

			p := models.NewPrediction(user.ID, user.DisplayName(), team.Name, opponent.Name, s.rng.IntN(2) == 0, bet)
			p.CreatedAt = now.Add(-time.Duration(s.rng.IntN(30*24*60)) * time.Minute)
			if _, err := s.predictions.Insert(ctx, p); err != nil {
				return created, fmt.Errorf("insert prediction: %w", err)
			}
			created++
		}
	}

	s.logger.Infof("Seeded %d predictions for %d users", created, len(users))
	return created, nil
}
