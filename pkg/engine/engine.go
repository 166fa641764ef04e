// Package engine runs the full geometric consistency pipeline over one
// model snapshot: joint resolution, plate and bolt assignment, then
// detect-correct cycles until the report is free of critical and major
// clashes or the iteration cap is hit. The engine keeps no state across
// calls; an Engine value is safe to reuse over independent snapshots.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/mpache/ferrite/pkg/clash"
	"github.com/mpache/ferrite/pkg/classify"
	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/connect"
	"github.com/mpache/ferrite/pkg/correct"
	"github.com/mpache/ferrite/pkg/model"
	"github.com/mpache/ferrite/pkg/resolver"
)

// Result is the complete outcome of one Process call. Callers always
// receive a full entity set plus a report; a summary with zero clashes
// is the explicit "ready for export" signal.
type Result struct {
	// Snapshot is the corrected entity set.
	Snapshot model.Snapshot

	// Report is the final clash scan over the corrected snapshot,
	// ordered by severity then entity id. Non-empty Report with
	// Converged true means only advisory findings remain.
	Report  []model.Clash
	Summary model.Summary

	// Corrections is the audit log of every applied transform and
	// every loudly-failed repair, in application order.
	Corrections []model.Correction

	// Converged is false when the correction cycle hit the iteration
	// cap or stalled with blocking clashes left; Report then carries
	// the residual list and Snapshot the best intermediate state.
	Converged bool

	// Iterations is the number of detect-correct cycles that ran.
	Iterations int
}

// Engine is the geometric consistency engine.
type Engine struct {
	cfg        config.Config
	classifier classify.Classifier
	log        *slog.Logger
}

// New builds an engine with the deterministic geometric classifier and
// the default logger. The configuration is validated on first use.
func New(cfg config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		classifier: classify.Geometric{},
		log:        slog.Default().With("component", "engine"),
	}
}

// UseClassifier swaps in an external role classifier. The engine treats
// any (role, confidence) pair as valid input regardless of producer.
func (e *Engine) UseClassifier(c classify.Classifier) {
	if c != nil {
		e.classifier = c
	}
}

// UseLogger replaces the engine's logger.
func (e *Engine) UseLogger(l *slog.Logger) {
	if l != nil {
		e.log = l
	}
}

// Process takes ownership of the snapshot and returns a new, spatially
// consistent entity set. The input is never mutated.
func (e *Engine) Process(snap model.Snapshot) (Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("engine: %w", err)
	}

	var res Result
	s := snap.Clone()

	// Fill in roles the external classifier did not provide.
	for i := range s.Members {
		if s.Members[i].Role == model.RoleUnknown {
			role, conf := e.classifier.Classify(s.Members[i])
			s.Members[i].Role = role
			s.Members[i].RoleConfidence = conf
		}
	}

	rr := resolver.Resolve(s.Members, s.Joints, e.cfg)
	s.Joints = rr.Joints
	e.log.Debug("joints resolved",
		"joints", len(rr.Joints),
		"recomputed", rr.Recomputed,
		"orphans", len(rr.Orphans),
		"excluded_members", len(rr.Excluded))

	mapper := connect.NewMapper(e.cfg, s.Members, s.Joints)
	plates, plateLog := mapper.AssignPlates(s.Plates)
	s.Plates = plates
	res.Corrections = append(res.Corrections, plateLog...)

	bolts, boltLog := mapper.PositionBolts(s.Bolts, s.Plates)
	s.Bolts = bolts
	res.Corrections = append(res.Corrections, boltLog...)

	welds, weldLog := connect.SizeWelds(s.Welds, s.Plates, e.cfg.Standards)
	s.Welds = welds
	res.Corrections = append(res.Corrections, weldLog...)

	// Detect-correct cycles, explicitly bounded. Correction within a
	// cycle is sequential; only detection shards internally.
	for res.Iterations < e.cfg.MaxIterations {
		clashes, summary := clash.Detect(s, e.cfg)
		if !summary.Blocking() {
			res.Converged = true
			break
		}

		res.Iterations++
		cr := correct.Apply(s, clashes, e.cfg)
		s = cr.Snapshot
		res.Corrections = append(res.Corrections, cr.Log...)
		e.log.Debug("correction cycle",
			"iteration", res.Iterations,
			"clashes", summary.Total(),
			"critical", summary.Critical,
			"major", summary.Major)

		if !cr.Changed {
			// Nothing left this engine can fix: remaining blocking
			// clashes are residual, not a reason to spin.
			break
		}
	}

	res.Snapshot = s
	res.Report, res.Summary = clash.Detect(s, e.cfg)
	if !res.Summary.Blocking() {
		res.Converged = true
	}
	if !res.Converged {
		e.log.Warn("residual clashes after correction",
			"iterations", res.Iterations,
			"critical", res.Summary.Critical,
			"major", res.Summary.Major)
	}
	return res, nil
}
