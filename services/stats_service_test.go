package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-predictions-go/models"
)

func seededStore() *fakeStore {
	store := &fakeStore{}
	for _, p := range []models.Prediction{
		graded("Lakers", "u-alice", true),
		graded("Lakers", "u-bob", true),
		graded("Lakers", "u-bob", false),
		graded("Heat", "u-alice", false),
	} {
		p := p
		_, _ = store.Insert(context.Background(), &p)
	}
	return store
}

func TestStatsServiceGlobalUsesOneBulkQuery(t *testing.T) {
	store := seededStore()
	svc := NewStatsService(collaborators(t, nil, store))

	stats, err := svc.TeamStats(context.Background(), models.ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, "67%", stats["Lakers"].WinRate)
	assert.Equal(t, 1, stats["Lakers"].Rank)

	_, queries := store.counts()
	assert.Equal(t, 1, queries)
}

func TestStatsServiceUserScopeWithoutSessionSkipsStore(t *testing.T) {
	store := seededStore()
	svc := NewStatsService(collaborators(t, nil, store))

	stats, err := svc.TeamStats(context.Background(), models.ScopeUser)
	require.NoError(t, err)
	assert.Empty(t, stats)

	_, queries := store.counts()
	assert.Zero(t, queries)
}

func TestStatsServiceUserScope(t *testing.T) {
	svc := NewStatsService(collaborators(t, alice, seededStore()))

	stats, err := svc.TeamStats(context.Background(), models.ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, "100%", stats["Lakers"].WinRate)
	assert.Equal(t, "0%", stats["Heat"].WinRate)
	assert.Equal(t, models.NoDataRate, stats["Celtics"].WinRate)
}

func TestStatsServiceSurfacesStoreFailure(t *testing.T) {
	store := seededStore()
	store.setErr(errors.New("connection refused"))
	svc := NewStatsService(collaborators(t, alice, store))
	ctx := context.Background()

	_, err := svc.TeamStats(ctx, models.ScopeGlobal)
	assert.ErrorIs(t, err, ErrStatsUnavailable)
	assert.ErrorContains(t, err, "connection refused")

	_, err = svc.TeamStats(ctx, models.ScopeUser)
	assert.ErrorIs(t, err, ErrStatsUnavailable)

	_, err = svc.Dashboard(ctx, "", "all")
	assert.ErrorIs(t, err, ErrStatsUnavailable)

	_, err = svc.TeamDetail(ctx, "Lakers", models.ScopeGlobal)
	assert.ErrorIs(t, err, ErrStatsUnavailable)

	_, err = svc.History(ctx)
	assert.ErrorIs(t, err, ErrStatsUnavailable)
}

func TestStatsServiceTeamDetail(t *testing.T) {
	svc := NewStatsService(collaborators(t, alice, seededStore()))
	ctx := context.Background()

	global, err := svc.TeamDetail(ctx, "Lakers", models.ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, 2, global.Stats.Wins)
	assert.Equal(t, 1, global.Stats.Losses)
	assert.Zero(t, global.Stats.Rank)
	assert.Equal(t, 2, global.Breakdown.WinsFor)
	assert.Len(t, global.Recent, 3)

	mine, err := svc.TeamDetail(ctx, "Lakers", models.ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Stats.Wins)
	assert.Len(t, mine.Recent, 1)

	_, err = svc.TeamDetail(ctx, "Knicks", models.ScopeGlobal)
	assert.ErrorIs(t, err, ErrUnknownTeam)

	anon := NewStatsService(collaborators(t, nil, seededStore()))
	_, err = anon.TeamDetail(ctx, "Lakers", models.ScopeUser)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStatsServiceDashboard(t *testing.T) {
	ctx := context.Background()

	signedIn := NewStatsService(collaborators(t, alice, seededStore()))
	dash, err := signedIn.Dashboard(ctx, "", "east")
	require.NoError(t, err)
	require.Len(t, dash.Cards, 2)
	assert.Equal(t, "Celtics", dash.Cards[0].Team.Name)
	assert.Equal(t, "Heat", dash.Cards[1].Team.Name)
	require.NotNil(t, dash.Cards[1].User)
	assert.Equal(t, "0%", dash.Cards[1].User.WinRate)
	require.NotNil(t, dash.Summary)
	assert.Equal(t, 2, dash.Summary.Total)
	assert.Equal(t, 1, dash.Summary.Correct)

	anon := NewStatsService(collaborators(t, nil, seededStore()))
	dash, err = anon.Dashboard(ctx, "lak", "")
	require.NoError(t, err)
	require.Len(t, dash.Cards, 1)
	assert.Nil(t, dash.Cards[0].User)
	assert.Nil(t, dash.Summary)
	assert.Equal(t, "all", dash.Filter)
	assert.Equal(t, "67%", dash.Cards[0].Global.WinRate)
}

func TestStatsServiceHistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewStatsService(collaborators(t, alice, seededStore()))

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Heat", history[0].TeamName, "newest first")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, summary.WinRate)

	_, err = NewStatsService(collaborators(t, nil, seededStore())).History(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
