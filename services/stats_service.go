package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

var (
	// ErrStatsUnavailable wraps every store failure seen while loading stats
	ErrStatsUnavailable = errors.New("stats unavailable")
	ErrUnknownTeam      = errors.New("unknown team")
)

// TeamDetail is the team-stats view model
type TeamDetail struct {
	Team      models.Team          `json:"team"`
	Scope     models.Scope         `json:"scope"`
	Stats     models.TeamStats     `json:"stats"`
	Breakdown models.TeamBreakdown `json:"breakdown"`
	Recent    []models.Prediction  `json:"recent"`
}

// TeamCard is one dashboard tile
type TeamCard struct {
	Team   models.Team       `json:"team"`
	Global models.TeamStats  `json:"global"`
	User   *models.TeamStats `json:"user,omitempty"`
}

// Dashboard is the main page view model
type Dashboard struct {
	Cards   []TeamCard          `json:"cards"`
	Summary *models.UserSummary `json:"summary,omitempty"`
	Query   string              `json:"query,omitempty"`
	Filter  string              `json:"filter"`
}

const recentLimit = 10

// StatsService loads predictions through the store and aggregates them
type StatsService struct {
	collab interfaces.Collaborators
	logger *logging.Logger
}

// NewStatsService creates a stats service over the given collaborators
func NewStatsService(collab interfaces.Collaborators) *StatsService {
	return &StatsService{
		collab: collab,
		logger: logging.WithPrefix("Stats"),
	}
}

func (s *StatsService) unavailable(op string, err error) error {
	s.logger.Errorf("%s failed: %v", op, err)
	return fmt.Errorf("%w: %w", ErrStatsUnavailable, err)
}

// TeamStats computes stats for every catalog team with one bulk query.
// User scope without a session returns an empty map without querying.
func (s *StatsService) TeamStats(ctx context.Context, scope models.Scope) (map[string]models.TeamStats, error) {
	teams := s.collab.Catalog.Teams()

	if scope == models.ScopeUser {
		user := s.collab.Session.CurrentUser(ctx)
		if user == nil {
			return map[string]models.TeamStats{}, nil
		}
		records, err := s.collab.Store.QueryByUser(ctx, user.ID)
		if err != nil {
			return nil, s.unavailable("user stats", err)
		}
		return ComputeStats(records, scope, user.ID, teams), nil
	}

	records, err := s.collab.Store.QueryAll(ctx)
	if err != nil {
		return nil, s.unavailable("global stats", err)
	}
	return ComputeStats(records, models.ScopeGlobal, "", teams), nil
}

// TeamDetail returns stats, breakdown and recent predictions for one team
func (s *StatsService) TeamDetail(ctx context.Context, teamName string, scope models.Scope) (*TeamDetail, error) {
	team, ok := s.collab.Catalog.Lookup(teamName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, teamName)
	}

	var (
		records []models.Prediction
		userID  string
		err     error
	)
	if scope == models.ScopeUser {
		user := s.collab.Session.CurrentUser(ctx)
		if user == nil {
			return nil, ErrNotAuthenticated
		}
		userID = user.ID
		records, err = s.collab.Store.QueryByUser(ctx, userID)
	} else {
		records, err = s.collab.Store.QueryByTeam(ctx, team.Name)
	}
	if err != nil {
		return nil, s.unavailable("team detail", err)
	}

	onTeam := make([]models.Prediction, 0, len(records))
	for _, r := range records {
		if r.TeamName == team.Name {
			onTeam = append(onTeam, r)
		}
	}

	stats := ComputeStats(onTeam, scope, userID, []models.Team{team})[team.Name]
	stats.Rank = 0 // a single-team computation says nothing about league rank

	recent := onTeam
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &TeamDetail{
		Team:      team,
		Scope:     scope,
		Stats:     stats,
		Breakdown: ComputeBreakdown(onTeam, team.Name),
		Recent:    recent,
	}, nil
}

// Dashboard loads global and (when signed in) user stats concurrently and
// returns the cards matching query and filter in catalog order
func (s *StatsService) Dashboard(ctx context.Context, query, filter string) (*Dashboard, error) {
	user := s.collab.Session.CurrentUser(ctx)

	var all, mine []models.Prediction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.collab.Store.QueryAll(gctx)
		return err
	})
	if user != nil {
		g.Go(func() error {
			var err error
			mine, err = s.collab.Store.QueryByUser(gctx, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.unavailable("dashboard", err)
	}

	teams := s.collab.Catalog.Teams()
	global := ComputeStats(all, models.ScopeGlobal, "", teams)

	var personal map[string]models.TeamStats
	dash := &Dashboard{Query: query, Filter: filter}
	if dash.Filter == "" {
		dash.Filter = "all"
	}
	if user != nil {
		personal = ComputeStats(mine, models.ScopeUser, user.ID, teams)
		summary := SummarizeUser(mine)
		dash.Summary = &summary
	}

	visible := s.collab.Catalog.Filter(query, filter)
	dash.Cards = make([]TeamCard, 0, len(visible))
	for _, t := range visible {
		card := TeamCard{Team: t, Global: global[t.Name]}
		if personal != nil {
			us := personal[t.Name]
			card.User = &us
		}
		dash.Cards = append(dash.Cards, card)
	}
	return dash, nil
}

// History returns the session user's predictions, newest first
func (s *StatsService) History(ctx context.Context) ([]models.Prediction, error) {
	user := s.collab.Session.CurrentUser(ctx)
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	records, err := s.collab.Store.QueryByUser(ctx, user.ID)
	if err != nil {
		return nil, s.unavailable("history", err)
	}
	return records, nil
}

// Summary returns the session user's correct/total record
func (s *StatsService) Summary(ctx context.Context) (models.UserSummary, error) {
	records, err := s.History(ctx)
	if err != nil {
		return models.UserSummary{}, err
	}
	return SummarizeUser(records), nil
}
