package prefetch

import (
	"context"
	"errors"
	"strings"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/database"
	"gorm.io/gorm"
)

// Store is the read surface the prefetcher needs. Every method returns
// (nil, nil) when the record simply does not exist; an error means the
// store itself failed.
type Store interface {
	TeamIntelligence(ctx context.Context, team string) (*models.TeamIntelligence, error)
	TeamClass(ctx context.Context, team string) (*models.TeamClass, error)
	TeamMomentum(ctx context.Context, team string) (*models.TeamMomentum, error)
	TacticalCell(ctx context.Context, styleA, styleB string) (*models.TacticalCell, error)
	RefereeProfile(ctx context.Context, name, league string) (*models.RefereeProfile, error)
	LeagueAverageReferee(ctx context.Context, league string) (*models.RefereeProfile, error)
	HeadToHead(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error)
	MarketProfile(ctx context.Context, team, location string) (*models.MarketProfile, error)
	ActiveTraps(ctx context.Context, teams []string) ([]models.MarketTrap, error)
	RealityCheck(ctx context.Context, matchID string) (*models.RealityCheck, error)
	OddsHistory(ctx context.Context, matchID string) ([]models.OddsQuote, error)
}

// GormStore implements Store over Postgres.
type GormStore struct {
	db *database.DB
}

func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func one[T any](db *gorm.DB) (*T, error) {
	var row T
	err := db.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) TeamIntelligence(ctx context.Context, team string) (*models.TeamIntelligence, error) {
	return one[models.TeamIntelligence](s.db.WithContext(ctx).Where("team_name = ?", team))
}

func (s *GormStore) TeamClass(ctx context.Context, team string) (*models.TeamClass, error) {
	return one[models.TeamClass](s.db.WithContext(ctx).Where("team_name = ?", team))
}

func (s *GormStore) TeamMomentum(ctx context.Context, team string) (*models.TeamMomentum, error) {
	return one[models.TeamMomentum](s.db.WithContext(ctx).Where("team_name = ?", team))
}

// TacticalCell looks the pair up unordered. A pair with no row of its
// own substitutes the seeded neutral cell so downstream scoring always
// has a prior to fall back on.
func (s *GormStore) TacticalCell(ctx context.Context, styleA, styleB string) (*models.TacticalCell, error) {
	cell, err := one[models.TacticalCell](s.db.WithContext(ctx).
		Where("(style_a = ? AND style_b = ?) OR (style_a = ? AND style_b = ?)", styleA, styleB, styleB, styleA))
	if err != nil || cell != nil {
		return cell, err
	}
	return one[models.TacticalCell](s.db.WithContext(ctx).
		Where("style_a = ? AND style_b = ?", "neutral", "neutral"))
}

func (s *GormStore) RefereeProfile(ctx context.Context, name, league string) (*models.RefereeProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	return one[models.RefereeProfile](s.db.WithContext(ctx).
		Where("referee_name = ? AND league = ?", name, league))
}

// LeagueAverageReferee synthesizes the substitute profile from the
// league's officiating aggregate.
func (s *GormStore) LeagueAverageReferee(ctx context.Context, league string) (*models.RefereeProfile, error) {
	type agg struct {
		AvgGoals float64
		AvgBias  float64
		N        int
	}
	var a agg
	err := s.db.WithContext(ctx).
		Model(&models.RefereeProfile{}).
		Select("AVG(avg_goals_per_game) AS avg_goals, AVG(home_bias_factor) AS avg_bias, COUNT(*) AS n").
		Where("league = ?", league).
		Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.N == 0 {
		return nil, nil
	}
	return &models.RefereeProfile{
		RefereeName:     "league average",
		League:          league,
		AvgGoalsPerGame: a.AvgGoals,
		UnderOverTend:   "neutral",
		HomeBiasFactor:  a.AvgBias,
		IsLeagueAverage: true,
	}, nil
}

func (s *GormStore) HeadToHead(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error) {
	return one[models.HeadToHead](s.db.WithContext(ctx).
		Where("(team_a = ? AND team_b = ?) OR (team_a = ? AND team_b = ?)", teamA, teamB, teamB, teamA))
}

func (s *GormStore) MarketProfile(ctx context.Context, team, location string) (*models.MarketProfile, error) {
	return one[models.MarketProfile](s.db.WithContext(ctx).
		Where("team_name = ? AND location = ?", team, location))
}

func (s *GormStore) ActiveTraps(ctx context.Context, teams []string) ([]models.MarketTrap, error) {
	var traps []models.MarketTrap
	err := s.db.WithContext(ctx).
		Where("team_name IN ? AND is_active = true", teams).
		Find(&traps).Error
	if err != nil {
		return nil, err
	}
	return traps, nil
}

func (s *GormStore) RealityCheck(ctx context.Context, matchID string) (*models.RealityCheck, error) {
	return one[models.RealityCheck](s.db.WithContext(ctx).Where("match_id = ?", matchID))
}

func (s *GormStore) OddsHistory(ctx context.Context, matchID string) ([]models.OddsQuote, error) {
	var quotes []models.OddsQuote
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("collected_at ASC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
