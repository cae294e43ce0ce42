package coordinator

import (
	"sync"

	"github.com/podiumd/podium/pkg/metrics"
)

// dirtySet tracks submissions whose aggregate is stale, grouped by
// competition. Mark and Drain are atomic with respect to each other: a mark
// lands either in the pass that is draining or in the set the next pass
// drains, never nowhere.
type dirtySet struct {
	mu            sync.Mutex
	byCompetition map[string]map[string]struct{}
	size          int
}

func newDirtySet() *dirtySet {
	return &dirtySet{byCompetition: make(map[string]map[string]struct{})}
}

func (d *dirtySet) Mark(competitionID, submissionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.byCompetition[competitionID]
	if set == nil {
		set = make(map[string]struct{})
		d.byCompetition[competitionID] = set
	}
	if _, ok := set[submissionID]; !ok {
		set[submissionID] = struct{}{}
		d.size++
		metrics.UpdateDirtySubmissions(d.size)
	}
}

// Drain removes and returns the competition's dirty submissions.
func (d *dirtySet) Drain(competitionID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.byCompetition[competitionID]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	delete(d.byCompetition, competitionID)
	d.size -= len(out)
	metrics.UpdateDirtySubmissions(d.size)
	return out
}

// Size returns the number of dirty submissions across all competitions.
func (d *dirtySet) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// Restore puts drained submissions back after an aborted pass so the next
// trigger retries them.
func (d *dirtySet) Restore(competitionID string, submissionIDs []string) {
	for _, id := range submissionIDs {
		d.Mark(competitionID, id)
	}
}
