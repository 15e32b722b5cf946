package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/sirupsen/logrus"
)

// Classifier is a logistic head over engineered pick features. Weights
// are trained offline and shipped as a JSON file; inference here is a
// dot product and a sigmoid. With no weights file the classifier runs
// in a neutral mode that returns 0.5 for everything.
type Classifier struct {
	mu      sync.RWMutex
	weights map[string]float64
	bias    float64
	version string
	neutral bool
}

type weightsFile struct {
	Version string             `json:"version"`
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// featureNames is the closed feature vector; unknown names in the
// weights file are rejected so a typo cannot silently zero a feature.
var featureNames = map[string]bool{
	"edge":            true,
	"model_prob":      true,
	"layer_total":     true,
	"data_coverage":   true,
	"price":           true,
	"momentum_diff":   true,
	"xg_total":        true,
	"steam_shortened": true,
}

// NewClassifier loads the weights file; an empty path yields the
// neutral classifier.
func NewClassifier(path string) (*Classifier, error) {
	if path == "" {
		logrus.Warn("ML weights path empty, classifier running neutral")
		return &Classifier{neutral: true}, nil
	}
	c := &Classifier{}
	if err := c.Load(path); err != nil {
		return nil, err
	}
	return c, nil
}

// Load (re)reads the weights file; safe to call while serving.
func (c *Classifier) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ML weights: %w", err)
	}
	var wf weightsFile
	if err := json.Unmarshal(raw, &wf); err != nil {
		return fmt.Errorf("parsing ML weights: %w", err)
	}
	for name := range wf.Weights {
		if !featureNames[name] {
			return fmt.Errorf("unknown ML feature %q in weights file", name)
		}
	}

	c.mu.Lock()
	c.weights = wf.Weights
	c.bias = wf.Bias
	c.version = wf.Version
	c.neutral = false
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"version":  wf.Version,
		"features": len(wf.Weights),
	}).Info("ML weights loaded")
	return nil
}

// Version returns the loaded weights version, or "neutral".
func (c *Classifier) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.neutral {
		return "neutral"
	}
	return c.version
}

// Features builds the feature vector for a pick. Missing context fields
// contribute their neutral value, mirroring the layer convention.
func Features(p *models.Pick, ctx *models.MatchContext) map[string]float64 {
	f := map[string]float64{
		"edge":          p.Edge,
		"model_prob":    p.ModelProb,
		"layer_total":   float64(p.LayerTotal()) / 88, // scaled to the weight budget
		"data_coverage": p.DataCoverage,
		"price":         p.Price,
	}
	if ctx.HomeMomentum != nil && ctx.AwayMomentum != nil {
		f["momentum_diff"] = (ctx.HomeMomentum.MomentumScore - ctx.AwayMomentum.MomentumScore) / 100
	}
	if ctx.HomeIntel != nil && ctx.AwayIntel != nil {
		f["xg_total"] = ctx.HomeIntel.XGForPerMatch + ctx.AwayIntel.XGForPerMatch
	}
	if rec := ctx.SteamFor(p.Market); rec != nil && rec.MovementPct < 0 {
		f["steam_shortened"] = -rec.MovementPct / 10
	}
	return f
}

// Predict returns the win confidence in [0, 1].
func (c *Classifier) Predict(features map[string]float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.neutral || len(c.weights) == 0 {
		return 0.5
	}
	z := c.bias
	for name, w := range c.weights {
		z += w * features[name]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
