package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matchpulse/betengine/internal/consensus"
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/database"
	"github.com/matchpulse/betengine/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recorder persists one immutable snapshot per decision, VETO and SKIP
// included. Settlement is the only later write, and it only touches the
// settlement fields.
type Recorder struct {
	db *database.DB
}

func NewRecorder(db *database.DB) *Recorder {
	return &Recorder{db: db}
}

// Build assembles the snapshot row without touching the database. The
// snapshot payload is the full pick serialized for byte-for-byte replay.
func Build(p *models.Pick, mc *models.MatchContext, report consensus.Report) (*models.BetSnapshot, error) {
	pickBlob, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serializing pick: %w", err)
	}
	homeDNA, err := json.Marshal(mc.HomeIntel)
	if err != nil {
		return nil, fmt.Errorf("serializing home profile: %w", err)
	}
	awayDNA, err := json.Marshal(mc.AwayIntel)
	if err != nil {
		return nil, fmt.Errorf("serializing away profile: %w", err)
	}
	weights, err := json.Marshal(p.LayerScores)
	if err != nil {
		return nil, fmt.Errorf("serializing layer scores: %w", err)
	}
	odds, err := json.Marshal(mc.Prices)
	if err != nil {
		return nil, fmt.Errorf("serializing odds: %w", err)
	}
	friction, err := json.Marshal(mc.Tactical)
	if err != nil {
		return nil, fmt.Errorf("serializing tactical cell: %w", err)
	}

	betID := uuid.NewString()
	snap := &models.BetSnapshot{
		BetID:   betID,
		MatchID: p.MatchID,
		Teams:   p.HomeTeam + " vs " + p.AwayTeam,

		SnapshotData: pickBlob,
		HomeDNA:      homeDNA,
		AwayDNA:      awayDNA,
		FrictionData: friction,
		ModelWeights: weights,
		OddsSnapshot: odds,

		ConsensusScore: report.Score,
		ConsensusCount: report.PositiveCount,
		Conviction:     report.Strength,

		FinalMarket:      p.Market,
		FinalOdds:        p.Price,
		FinalStake:       p.Stake,
		FinalProbability: p.ModelProb,
		FinalEdge:        p.Edge,
		ExpectedValue:    p.ModelProb*p.Price - 1,
		FinalAction:      string(p.Action),
		FinalScore:       p.FinalScore,
	}

	for _, v := range report.Votes {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("serializing vote %s: %w", v.ModelName, err)
		}
		snap.Votes = append(snap.Votes, models.ModelVote{
			BetID:               betID,
			ModelName:           v.ModelName,
			Signal:              string(v.Signal),
			Confidence:          v.Confidence,
			MarketSuggested:     v.MarketSuggested,
			ProbabilityEstimate: v.ProbabilityEstimate,
			Reasoning:           v.Reasoning,
			RawData:             raw,
			AgreedWithConsensus: v.Signal.IsPositive() == (report.PositiveCount*2 >= report.Total),
			WeightUsed:          v.Weight,
		})
	}
	return snap, nil
}

// Record builds and inserts the snapshot with its votes.
func (r *Recorder) Record(ctx context.Context, p *models.Pick, mc *models.MatchContext, report consensus.Report) (*models.BetSnapshot, error) {
	snap, err := Build(p, mc, report)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(snap).Error; err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"bet_id": snap.BetID,
		"match":  snap.MatchID,
		"market": snap.FinalMarket,
		"action": snap.FinalAction,
	}).Info("Snapshot recorded")
	return snap, nil
}

// Replay decodes the stored pick payload.
func Replay(snap *models.BetSnapshot) (*models.Pick, error) {
	var p models.Pick
	if err := json.Unmarshal(snap.SnapshotData, &p); err != nil {
		return nil, fmt.Errorf("replaying snapshot %s: %w", snap.BetID, err)
	}
	return &p, nil
}

// ProfitLoss computes the settled return as a bankroll fraction in
// decimal arithmetic: stake rides on WIN, burns on LOSS, and returns
// home on PUSH and VOID.
func ProfitLoss(result models.Result, stake, price float64) decimal.Decimal {
	s := decimal.NewFromFloat(stake)
	switch result {
	case models.ResultWin:
		return s.Mul(decimal.NewFromFloat(price).Sub(decimal.NewFromInt(1))).Round(4)
	case models.ResultLoss:
		return s.Neg().Round(4)
	default:
		return decimal.Zero
	}
}

// voteCorrect judges a head against the settled result. PUSH and VOID
// settle no opinion either way.
func voteCorrect(signal string, result models.Result) *bool {
	if result == models.ResultPush || result == models.ResultVoid {
		return nil
	}
	positive := consensus.Signal(signal).IsPositive()
	correct := positive == (result == models.ResultWin)
	return &correct
}

// Settle writes the result once. A second settlement attempt fails
// with ErrAlreadySettled; snapshots are otherwise immutable.
func (r *Recorder) Settle(ctx context.Context, betID string, result models.Result) (*models.BetSnapshot, error) {
	var snap models.BetSnapshot
	err := r.db.WithContext(ctx).Preload("Votes").Where("bet_id = ?", betID).First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if snap.IsSettled() {
		return nil, utils.ErrAlreadySettled
	}

	pl := ProfitLoss(result, snap.FinalStake, snap.FinalOdds)
	now := time.Now().UTC()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"result":      string(result),
			"profit_loss": pl,
			"settled_at":  now,
		}
		if err := tx.Model(&models.BetSnapshot{}).Where("bet_id = ?", betID).Updates(updates).Error; err != nil {
			return err
		}
		for _, vote := range snap.Votes {
			correct := voteCorrect(vote.Signal, result)
			if correct == nil {
				continue
			}
			if err := tx.Model(&models.ModelVote{}).Where("id = ?", vote.ID).
				Update("was_correct", *correct).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settling %s: %w", betID, err)
	}

	snap.Result = string(result)
	snap.ProfitLoss = &pl
	snap.SettledAt = &now
	logrus.WithFields(logrus.Fields{
		"bet_id": betID,
		"result": result,
		"pl":     pl.String(),
	}).Info("Snapshot settled")
	return &snap, nil
}
