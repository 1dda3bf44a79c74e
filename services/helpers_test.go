package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nba-predictions-go/catalog"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/models"
)

type fakeSession struct {
	user *models.User
}

func (s fakeSession) CurrentUser(context.Context) *models.User { return s.user }

// fakeStore records calls and can fail or block inserts
type fakeStore struct {
	mu      sync.Mutex
	records []models.Prediction
	inserts int
	queries int
	err     error

	started chan struct{} // signalled when Insert begins, if set
	release chan struct{} // Insert waits on this (or ctx) when set
}

func (s *fakeStore) Insert(ctx context.Context, p *models.Prediction) (*models.Prediction, error) {
	s.mu.Lock()
	s.inserts++
	started, release, err := s.started, s.release, s.err
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	stored.ID = fmt.Sprintf("p%d", len(s.records)+1)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records = append(s.records, stored)
	return &stored, nil
}

func (s *fakeStore) query(keep func(models.Prediction) bool) ([]models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Prediction, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if keep(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *fakeStore) QueryByUser(_ context.Context, userID string) ([]models.Prediction, error) {
	return s.query(func(p models.Prediction) bool { return p.UserID == userID })
}

func (s *fakeStore) QueryByTeam(_ context.Context, team string) ([]models.Prediction, error) {
	return s.query(func(p models.Prediction) bool { return p.TeamName == team })
}

func (s *fakeStore) QueryAll(context.Context) ([]models.Prediction, error) {
	return s.query(func(models.Prediction) bool { return true })
}

func (s *fakeStore) counts() (inserts, queries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts, s.queries
}

func (s *fakeStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

var testTeams = []models.Team{
	{Name: "Lakers", Conference: "west"},
	{Name: "Celtics", Conference: "east"},
	{Name: "Heat", Conference: "east"},
	{Name: "Nuggets", Conference: "west"},
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(testTeams)
	require.NoError(t, err)
	return c
}

var alice = &models.User{ID: "u-alice", Username: "alice", Email: "alice@gmail.com"}

func collaborators(t *testing.T, user *models.User, store *fakeStore) interfaces.Collaborators {
	return interfaces.Collaborators{
		Session: fakeSession{user: user},
		Store:   store,
		Catalog: testCatalog(t),
	}
}

func graded(team string, userID string, outcome bool) models.Prediction {
	return models.Prediction{TeamName: team, UserID: userID, Opponent: "x", BetType: models.BetFor, Outcome: &outcome}
}
