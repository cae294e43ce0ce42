// Package coordinator decides when aggregation and ranking run. It owns the
// per-competition Idle/Recomputing state machine, guarantees at most one
// pass per competition at a time, and coalesces triggers that arrive while a
// pass is in flight into one follow-up pass.
package coordinator

import (
	"context"
	"runtime"
	"sync"

	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/pkg/logger"
	"github.com/podiumd/podium/pkg/metrics"
)

// Default coordinator configuration.
const (
	defaultQueueSize   = 1024
	defaultWorkerCount = 4
)

// ScoreSource reads the score rows a pass aggregates.
type ScoreSource interface {
	ScoresFor(ctx context.Context, submissionID string) ([]model.Score, error)
}

// Directory reads the competition entities a pass ranks.
type Directory interface {
	Criteria(ctx context.Context, competitionID string) ([]model.Criterion, error)
	Submissions(ctx context.Context, competitionID string) ([]model.Submission, error)
}

// ResultSink receives the committed output of a pass.
type ResultSink interface {
	Commit(ctx context.Context, competitionID string, entries []model.RankedEntry) error
}

// Publisher is notified after each commit. Used by the live leaderboard
// feed; publishing happens outside the commit path and must not block a
// pass.
type Publisher interface {
	PublishRanking(ctx context.Context, competitionID string, entries []model.RankedEntry)
}

// TriggerStatus reports how a ranking trigger was absorbed.
type TriggerStatus string

const (
	// TriggerQueued means a pass was scheduled.
	TriggerQueued TriggerStatus = "queued"
	// TriggerCoalesced means a pass was already queued or running; the
	// trigger is covered by a pass that has not started (or a rerun).
	TriggerCoalesced TriggerStatus = "coalesced"
)

// compState is one competition's position in the Idle -> Recomputing -> Idle
// machine. queued and recomputing are never both set.
type compState struct {
	queued      bool
	recomputing bool
	rerun       bool
}

// Coordinator runs recalculation passes off a bounded queue of competition
// IDs, one pass per competition at a time.
type Coordinator struct {
	mu     sync.Mutex
	states map[string]*compState

	dirty      *dirtySet
	queue      chan string
	queueSize  int
	workers    int
	maxFanout  int
	aggregates sync.Map // submissionID -> *float64, cache across passes

	scores     ScoreSource
	dir        Directory
	results    ResultSink
	publishers []Publisher

	wg      sync.WaitGroup
	started bool
	stopped bool
	log     logger.Logger
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithQueueSize bounds the recompute request queue.
func WithQueueSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithWorkerCount sets the number of pass workers. Passes for different
// competitions run in parallel; the per-competition state machine keeps any
// single competition on one worker.
func WithWorkerCount(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithAggregateParallelism bounds how many submissions a pass reaggregates
// concurrently.
func WithAggregateParallelism(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxFanout = n
		}
	}
}

// WithPublisher registers a post-commit listener.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.publishers = append(c.publishers, p)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a coordinator over the given score source, entity directory
// and result sink.
func New(scores ScoreSource, dir Directory, results ResultSink, opts ...Option) *Coordinator {
	c := &Coordinator{
		states:    make(map[string]*compState),
		dirty:     newDirtySet(),
		queueSize: defaultQueueSize,
		workers:   defaultWorkerCount,
		maxFanout: runtime.NumCPU(),
		scores:    scores,
		dir:       dir,
		results:   results,
		log:       logger.Named("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = make(chan string, c.queueSize)
	return c
}

// Start launches the pass workers. The coordinator is single-lifecycle:
// after Stop the queue is closed for good and Start is a no-op.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	metrics.UpdateRecomputeWorkers(c.workers)
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}
}

// Stop drains the queue and waits for in-flight passes to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.stopped = true
	c.mu.Unlock()

	close(c.queue)
	c.wg.Wait()
}

// MarkDirty records that a submission's aggregate is stale. Called by the
// score ledger on every successful write; it never schedules a pass by
// itself, so judges scoring concurrently do not thrash the ranking.
func (c *Coordinator) MarkDirty(ctx context.Context, competitionID, submissionID string) {
	c.dirty.Mark(competitionID, submissionID)
}

// TriggerRanking schedules a recalculation pass for the competition.
//
// If the competition is Idle, a pass is queued. If a pass is already queued
// but not started, the trigger is coalesced into it (the pass will see every
// score written up to its start). If a pass is running, the rerun flag is
// set and the worker runs a follow-up pass immediately after, picking up
// scores written during the first one. No trigger is ever silently dropped.
func (c *Coordinator) TriggerRanking(ctx context.Context, competitionID string) (TriggerStatus, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return "", ErrStopped
	}
	st := c.states[competitionID]
	if st == nil {
		st = &compState{}
		c.states[competitionID] = st
	}
	if st.queued {
		c.mu.Unlock()
		metrics.RecordCoalescedTrigger()
		return TriggerCoalesced, nil
	}
	if st.recomputing {
		st.rerun = true
		c.mu.Unlock()
		metrics.RecordCoalescedTrigger()
		return TriggerCoalesced, nil
	}
	// The send stays under c.mu: Stop flips started under the same lock
	// before closing the queue, so no trigger can send on a closed channel.
	// The send never blocks here; a full queue hits the default branch.
	select {
	case c.queue <- competitionID:
		st.queued = true
		backlog := len(c.queue)
		c.mu.Unlock()
		metrics.UpdateRecomputeQueueSize(backlog)
		return TriggerQueued, nil
	default:
		c.mu.Unlock()
		return "", ErrBackpressure
	}
}

func (c *Coordinator) worker(ctx context.Context) {
	defer c.wg.Done()
	for competitionID := range c.queue {
		metrics.UpdateRecomputeQueueSize(len(c.queue))

		c.mu.Lock()
		st := c.states[competitionID]
		st.queued = false
		st.recomputing = true
		c.mu.Unlock()

		for {
			if err := c.runPass(ctx, competitionID); err != nil {
				metrics.RecordRecomputeFailure()
				c.log.Error(ctx, "ranking pass aborted",
					logger.String("competition", competitionID),
					logger.Error(err),
				)
			}

			c.mu.Lock()
			if st.rerun {
				// A trigger landed mid-pass; go again so its scores make
				// the final ranking.
				st.rerun = false
				c.mu.Unlock()
				continue
			}
			st.recomputing = false
			c.mu.Unlock()
			break
		}
	}
}

// Recomputing reports whether a pass for the competition is in flight or
// queued. Exposed for stats.
func (c *Coordinator) Recomputing(competitionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[competitionID]
	return st != nil && (st.queued || st.recomputing)
}

// DirtyCount returns the number of submissions awaiting reaggregation.
func (c *Coordinator) DirtyCount() int {
	return c.dirty.Size()
}

// QueueLen returns the recompute queue backlog.
func (c *Coordinator) QueueLen() int {
	return len(c.queue)
}

// Workers returns the configured pass worker count.
func (c *Coordinator) Workers() int {
	return c.workers
}
