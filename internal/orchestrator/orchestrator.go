package orchestrator

import (
	"context"
	"errors"
	"sort"

	"github.com/matchpulse/betengine/internal/composer"
	"github.com/matchpulse/betengine/internal/consensus"
	"github.com/matchpulse/betengine/internal/decision"
	"github.com/matchpulse/betengine/internal/layers"
	"github.com/matchpulse/betengine/internal/metrics"
	"github.com/matchpulse/betengine/internal/ml"
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/prefetch"
	"github.com/matchpulse/betengine/internal/probability"
	"github.com/matchpulse/betengine/internal/snapshot"
	"github.com/matchpulse/betengine/internal/traps"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/matchpulse/betengine/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives the per-match pipeline: prefetch, probability
// engines, trap filter, layers, composer, consensus, gate, snapshot.
type Orchestrator struct {
	cfg        *config.EngineConfig
	workers    int
	topK       int
	prefetcher *prefetch.Prefetcher
	layers     *layers.Engine
	composer   *composer.Composer
	gate       *decision.Gate
	voting     *consensus.Engine
	classifier *ml.Classifier
	recorder   *snapshot.Recorder // nil disables persistence
}

func New(cfg *config.EngineConfig, workers, topK int, pf *prefetch.Prefetcher, clf *ml.Classifier, rec *snapshot.Recorder) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if topK < 1 {
		topK = 5
	}
	return &Orchestrator{
		cfg:        cfg,
		workers:    workers,
		topK:       topK,
		prefetcher: pf,
		layers:     layers.NewEngine(cfg),
		composer:   composer.New(cfg),
		gate:       decision.NewGate(cfg),
		voting:     consensus.NewEngine(cfg),
		classifier: clf,
		recorder:   rec,
	}
}

// RunResult is the outcome of one analysis run.
type RunResult struct {
	TopPicks  []*models.Pick   `json:"top_picks"`
	AllPicks  []*models.Pick   `json:"all_picks"`
	Forecasts []*MatchForecast `json:"forecasts,omitempty"`
	Failed    []string         `json:"failed_matches,omitempty"`
}

// MatchForecast is the model's scoreline view of one fixture: the goal
// expectancies and the ranked most likely correct scores.
type MatchForecast struct {
	MatchID    string                        `json:"match_id"`
	HomeTeam   string                        `json:"home_team"`
	AwayTeam   string                        `json:"away_team"`
	LambdaHome float64                       `json:"lambda_home"`
	LambdaAway float64                       `json:"lambda_away"`
	TopScores  []probability.ScorePrediction `json:"top_scores"`
}

// Analyze processes the batch, matches in parallel, markets within a
// match sequentially. A match whose context cannot load is reported in
// Failed and never sinks the run.
func (o *Orchestrator) Analyze(ctx context.Context, req models.AnalyzeRequest) (*RunResult, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = o.topK
	}

	results := make([][]*models.Pick, len(req.Matches))
	forecasts := make([]*MatchForecast, len(req.Matches))
	failed := make([]string, len(req.Matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, match := range req.Matches {
		i, match := i, match
		g.Go(func() error {
			picks, forecast, err := o.analyzeMatch(gctx, match)
			if err != nil {
				metrics.ContextFetchFailures.Inc()
				logrus.WithError(err).WithField("match", match.MatchID).Error("Match analysis failed")
				failed[i] = match.MatchID
				return nil
			}
			results[i] = picks
			forecasts[i] = forecast
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &RunResult{}
	for i := range results {
		res.AllPicks = append(res.AllPicks, results[i]...)
		if forecasts[i] != nil {
			res.Forecasts = append(res.Forecasts, forecasts[i])
		}
		if failed[i] != "" {
			res.Failed = append(res.Failed, failed[i])
		}
	}
	res.TopPicks = Rank(res.AllPicks, topK)
	return res, nil
}

// AnalyzeMatch runs the full pipeline for one fixture and returns a
// pick per offered market, snapshots recorded along the way.
func (o *Orchestrator) AnalyzeMatch(ctx context.Context, req models.MatchRequest) ([]*models.Pick, error) {
	picks, _, err := o.analyzeMatch(ctx, req)
	return picks, err
}

func (o *Orchestrator) analyzeMatch(ctx context.Context, req models.MatchRequest) ([]*models.Pick, *MatchForecast, error) {
	done := metrics.TimeMatch()
	defer done()

	mc, err := o.prefetcher.Fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	lambdaHome, lambdaAway := DeriveLambdas(mc)
	dh, da := styleDeltas(mc, o.cfg.StyleHTDelta)
	probs := probability.Compute(
		lambdaHome, lambdaAway, o.cfg.DixonColesRho,
		o.cfg.MaxGoals, o.cfg.HalfMaxGoals,
		o.cfg.FirstHalfShare, dh, da,
	)

	logrus.WithFields(logrus.Fields{
		"match":       req.MatchID,
		"lambda_home": lambdaHome,
		"lambda_away": lambdaAway,
		"markets":     len(req.Prices),
	}).Info("Analyzing match")

	forecast := &MatchForecast{
		MatchID:    mc.MatchID,
		HomeTeam:   mc.HomeTeam,
		AwayTeam:   mc.AwayTeam,
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		TopScores:  probs.FullTime.TopScores(o.cfg.CorrectScoreN),
	}

	markets := make([]string, 0, len(req.Prices))
	for m := range req.Prices {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	picks := make([]*models.Pick, 0, len(markets))
	for _, market := range markets {
		pick := o.analyzeMarket(ctx, mc, probs, market, req.Prices[market])
		picks = append(picks, pick)
	}
	return picks, forecast, nil
}

func (o *Orchestrator) analyzeMarket(ctx context.Context, mc *models.MatchContext, probs *probability.MatchProbabilities, market string, price float64) *models.Pick {
	p := models.NewPick(mc.MatchID, mc.HomeTeam, mc.AwayTeam, mc.League, market, price)

	modelProb, known := probs.MarketProb(market)
	if !known {
		p.AddWarning(utils.ErrUnknownMarket.Error() + ": " + market)
		p.Action = models.ActionSkip
		o.record(ctx, p, mc, consensus.Report{Strength: consensus.StrengthNone})
		return p
	}
	p.ModelProb = modelProb
	p.Edge = p.ModelProb - p.ImpliedProb

	verdict, err := traps.Check(p, mc)
	if err != nil {
		if errors.Is(err, utils.ErrTrapTableUnread) {
			p.AddWarning("trap table unreadable, pick unverifiable")
			p.Action = models.ActionSkip
			p.Stake = 0
			o.record(ctx, p, mc, consensus.Report{Strength: consensus.StrengthNone})
			return p
		}
	}
	if verdict.Trapped {
		traps.Apply(p, verdict)
		metrics.TrapVetoes.Inc()
		o.record(ctx, p, mc, consensus.Report{Strength: consensus.StrengthNone})
		metrics.PicksTotal.WithLabelValues(string(p.Action)).Inc()
		return p
	}

	o.layers.Evaluate(p, mc)

	mlConf := 0.5
	if o.classifier != nil {
		mlConf = o.classifier.Predict(ml.Features(p, mc))
	}
	o.composer.Compose(p, mc, mlConf)

	report := o.voting.Aggregate(buildVotes(p, mc, mlConf, o.cfg))
	o.gate.Decide(p, report)

	o.record(ctx, p, mc, report)
	metrics.PicksTotal.WithLabelValues(string(p.Action)).Inc()
	return p
}

func (o *Orchestrator) record(ctx context.Context, p *models.Pick, mc *models.MatchContext, report consensus.Report) {
	if o.recorder == nil {
		return
	}
	if _, err := o.recorder.Record(ctx, p, mc, report); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"match":  p.MatchID,
			"market": p.Market,
		}).Error("Snapshot write failed")
		p.AddWarning("snapshot not recorded")
		return
	}
	metrics.SnapshotsRecorded.Inc()
}

// Rank filters to committed picks and orders them by sweet-spot flag,
// data coverage, then final score, returning the top k.
func Rank(picks []*models.Pick, k int) []*models.Pick {
	committed := make([]*models.Pick, 0, len(picks))
	for _, p := range picks {
		if p.Action.Rank() > models.ActionSkip.Rank() && p.Action != models.ActionVeto {
			committed = append(committed, p)
		}
	}
	sort.SliceStable(committed, func(i, j int) bool {
		a, b := committed[i], committed[j]
		if a.SweetSpot != b.SweetSpot {
			return a.SweetSpot
		}
		if a.DataCoverage != b.DataCoverage {
			return a.DataCoverage > b.DataCoverage
		}
		return a.FinalScore > b.FinalScore
	})
	if len(committed) > k {
		committed = committed[:k]
	}
	return committed
}
