// Package clash is the rule engine: a fixed table of detection
// predicates scanned over a model snapshot, producing severity-ranked
// clash records. Detection is a pure read-only scan; entity-kind scans
// run concurrently and the aggregated results are re-sorted so the
// output ordering never depends on scheduling.
package clash

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mpache/ferrite/pkg/config"
	"github.com/mpache/ferrite/pkg/model"
)

// Detect scans the snapshot against every rule and returns the clash
// list ordered by (severity descending, entity id ascending, type),
// plus per-severity counts. It never mutates the snapshot.
func Detect(snap model.Snapshot, cfg config.Config) ([]model.Clash, model.Summary) {
	var members, joints, plates, bolts []model.Clash

	var g errgroup.Group
	g.Go(func() error { members = memberClashes(snap, cfg); return nil })
	g.Go(func() error { joints = jointClashes(snap, cfg); return nil })
	g.Go(func() error { plates = plateClashes(snap, cfg); return nil })
	g.Go(func() error { bolts = boltClashes(snap, cfg); return nil })
	_ = g.Wait() // scans are infallible; the group only joins them

	all := make([]model.Clash, 0, len(members)+len(joints)+len(plates)+len(bolts))
	all = append(all, members...)
	all = append(all, joints...)
	all = append(all, plates...)
	all = append(all, bolts...)

	sortClashes(all)
	return all, model.Summarize(all)
}

// sortClashes imposes the stable report order required for repeated
// runs over identical input to produce identical reports.
func sortClashes(clashes []model.Clash) {
	sort.Slice(clashes, func(a, b int) bool {
		ca, cb := clashes[a], clashes[b]
		if ca.Severity != cb.Severity {
			return ca.Severity < cb.Severity // critical sorts first
		}
		if ca.Entity() != cb.Entity() {
			return ca.Entity() < cb.Entity()
		}
		if ca.Type != cb.Type {
			return ca.Type < cb.Type
		}
		return ca.ID < cb.ID
	})
}
