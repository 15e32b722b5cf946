package prefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/matchpulse/betengine/internal/steam"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Prefetcher loads everything a match needs in one pass and caches the
// assembled context, so the evaluators never touch the store.
type Prefetcher struct {
	store    Store
	resolver *resolver.Resolver
	cache    *redis.Client
	breaker  *gobreaker.CircuitBreaker
	ttl      time.Duration
	timeout  time.Duration
}

func NewPrefetcher(store Store, res *resolver.Resolver, cache *redis.Client, ttl, timeout time.Duration) *Prefetcher {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "match-context-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).
				Warn("Context store breaker state change")
		},
	})
	return &Prefetcher{
		store:    store,
		resolver: res,
		cache:    cache,
		breaker:  breaker,
		ttl:      ttl,
		timeout:  timeout,
	}
}

func cacheKey(matchID string) string {
	return "matchctx:" + matchID
}

// Fetch returns the match context, from cache when fresh. A missing
// optional record leaves its field nil; only a store-level failure (or
// an open breaker) fails the match.
func (p *Prefetcher) Fetch(ctx context.Context, req models.MatchRequest) (*models.MatchContext, error) {
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey(req.MatchID)).Bytes(); err == nil {
			var mc models.MatchContext
			if err := json.Unmarshal(cached, &mc); err == nil {
				logrus.WithField("match", req.MatchID).Debug("Context cache hit")
				mc.Prices = req.Prices
				return &mc, nil
			}
		}
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.load(loadCtx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("prefetching context for %s: %w", req.MatchID, err)
	}
	mc := result.(*models.MatchContext)

	if p.cache != nil {
		if raw, err := json.Marshal(mc); err == nil {
			if err := p.cache.Set(ctx, cacheKey(req.MatchID), raw, p.ttl).Err(); err != nil {
				logrus.WithError(err).Warn("Context cache write failed")
			}
		}
	}
	return mc, nil
}

// Invalidate drops the cached context, used after reference-data reloads.
func (p *Prefetcher) Invalidate(ctx context.Context, matchID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Del(ctx, cacheKey(matchID)).Err(); err != nil {
		logrus.WithError(err).WithField("match", matchID).Warn("Context cache invalidation failed")
	}
}

func (p *Prefetcher) load(ctx context.Context, req models.MatchRequest) (*models.MatchContext, error) {
	home := p.resolver.Resolve(req.HomeTeam)
	away := p.resolver.Resolve(req.AwayTeam)

	mc := &models.MatchContext{
		MatchID:        req.MatchID,
		League:         req.League,
		HomeTeam:       home,
		AwayTeam:       away,
		KickOff:        req.KickOff,
		Blacklisted:    req.Blacklisted,
		ExtremeWeather: req.ExtremeWeather,
		HighStakes:     req.HighStakes,
		Prices:         req.Prices,
	}

	var err error
	if mc.HomeIntel, err = p.store.TeamIntelligence(ctx, home); err != nil {
		return nil, err
	}
	if mc.AwayIntel, err = p.store.TeamIntelligence(ctx, away); err != nil {
		return nil, err
	}
	if mc.HomeClass, err = p.store.TeamClass(ctx, home); err != nil {
		return nil, err
	}
	if mc.AwayClass, err = p.store.TeamClass(ctx, away); err != nil {
		return nil, err
	}
	if mc.HomeMomentum, err = p.store.TeamMomentum(ctx, home); err != nil {
		return nil, err
	}
	if mc.AwayMomentum, err = p.store.TeamMomentum(ctx, away); err != nil {
		return nil, err
	}

	if mc.HomeIntel != nil && mc.AwayIntel != nil {
		cell, err := p.store.TacticalCell(ctx, mc.HomeIntel.CurrentStyle, mc.AwayIntel.CurrentStyle)
		if err != nil {
			return nil, err
		}
		mc.Tactical = cell
	}

	if mc.Referee, err = p.store.RefereeProfile(ctx, req.Referee, req.League); err != nil {
		return nil, err
	}
	if mc.Referee == nil {
		if mc.Referee, err = p.store.LeagueAverageReferee(ctx, req.League); err != nil {
			return nil, err
		}
	}

	if mc.H2H, err = p.store.HeadToHead(ctx, home, away); err != nil {
		return nil, err
	}
	if mc.HomeProfile, err = p.store.MarketProfile(ctx, home, "home"); err != nil {
		return nil, err
	}
	if mc.AwayProfile, err = p.store.MarketProfile(ctx, away, "away"); err != nil {
		return nil, err
	}
	if mc.RealityCheck, err = p.store.RealityCheck(ctx, req.MatchID); err != nil {
		return nil, err
	}

	// the trap table fails closed, not open: an unreadable table marks
	// the whole match unverifiable instead of silently passing picks
	traps, err := p.store.ActiveTraps(ctx, []string{home, away})
	if err != nil {
		logrus.WithError(err).WithField("match", req.MatchID).Error("Trap table unreadable")
		mc.TrapTableUnreadable = true
	} else {
		mc.Traps = traps
	}

	quotes, err := p.store.OddsHistory(ctx, req.MatchID)
	if err != nil {
		logrus.WithError(err).WithField("match", req.MatchID).Warn("Odds history unavailable, steam layer will abstain")
	} else if len(quotes) > 0 {
		mc.Steam = steam.ToContextMap(steam.Analyze(req.MatchID, quotes))
	}

	return mc, nil
}
