// Package refresh periodically reloads the dashboard datasets and publishes
// them as a single snapshot.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/qmuntal/stateless"
	"golang.org/x/sync/errgroup"

	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/ingest"
	"github.com/david/becas-dashboard/internal/models"
	"github.com/david/becas-dashboard/internal/views"
)

// State of the refresh cycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

const (
	triggerStart   = "start"
	triggerSucceed = "succeed"
	triggerFail    = "fail"
	triggerSettle  = "settle"
)

// DefaultInterval between timed refreshes.
const DefaultInterval = 60 * time.Second

// LoadErrorPrefix starts every user-facing load failure message.
const LoadErrorPrefix = "No se pudieron cargar los datos: "

var ErrCycleRunning = errors.New("a refresh cycle is already running")

// Source loads the three datasets. ingest.Loader implements it.
type Source interface {
	LoadBeca18(ctx context.Context) (*models.Beca18Document, error)
	LoadInstitutions(ctx context.Context) (*models.InstitutionsDocument, error)
	LoadIntegral(ctx context.Context) (*models.IntegralDocument, error)
}

// RetrievalError is the failure to fetch or parse one dataset.
type RetrievalError struct {
	Kind ingest.Kind
	Err  error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// Status describes the coordinator for the status endpoint.
type Status struct {
	State       State     `json:"state"`
	CycleID     string    `json:"cycle_id,omitempty"`
	Loaded      bool      `json:"loaded"`
	LastAttempt time.Time `json:"last_attempt,omitzero"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	Interval    string    `json:"interval"`
}

// Listener receives the unfiltered projection of every view after a cycle.
// On failure each result carries the error and the previous data.
type Listener func(Status, []views.ViewResult)

// Options configures a Coordinator. Zero values select defaults.
type Options struct {
	Interval time.Duration
	Metrics  *Metrics
}

// Coordinator drives refresh cycles. It is the only writer of its store.
type Coordinator struct {
	source    Source
	store     *dataset.Store
	projector *views.Projector
	interval  time.Duration
	metrics   *Metrics

	cycleMu sync.Mutex // held for the whole cycle

	mu        sync.RWMutex
	status    Status
	listeners []Listener
	base      context.Context // parent of triggered cycles; set by Run

	machine *stateless.StateMachine
	now     func() time.Time
	newID   func() string
}

func New(source Source, store *dataset.Store, projector *views.Projector, opts Options) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	c := &Coordinator{
		source:    source,
		store:     store,
		projector: projector,
		interval:  opts.Interval,
		metrics:   opts.Metrics,
		status:    Status{State: StateIdle},
		base:      context.Background(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	c.machine = c.newMachine()
	return c
}

func (c *Coordinator) newMachine() *stateless.StateMachine {
	m := stateless.NewStateMachineWithExternalStorage(
		func(_ context.Context) (stateless.State, error) {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.status.State, nil
		},
		func(_ context.Context, s stateless.State) error {
			c.mu.Lock()
			c.status.State = s.(State)
			c.mu.Unlock()
			return nil
		},
		stateless.FiringImmediate,
	)

	m.Configure(StateIdle).
		Permit(triggerStart, StateLoading)
	m.Configure(StateLoading).
		Permit(triggerSucceed, StateReady).
		Permit(triggerFail, StateFailed)
	m.Configure(StateReady).
		Permit(triggerSettle, StateIdle)
	m.Configure(StateFailed).
		Permit(triggerSettle, StateIdle)

	m.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		log.Printf("[refresh] %v -> %v", t.Source, t.Destination)
	})
	return m
}

// Subscribe registers l for every subsequent cycle.
func (c *Coordinator) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Status returns a copy of the current status.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	s.Loaded = c.store.Loaded()
	s.Interval = c.interval.String()
	return s
}

// Refresh runs one cycle, waiting for any cycle in progress to finish first.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	return c.cycle(ctx, c.newID())
}

// Trigger starts a cycle in the background and returns its ID. It returns
// ErrCycleRunning instead of queueing when a cycle is in progress. The cycle
// is cancelled when the context passed to Run is done.
func (c *Coordinator) Trigger() (string, error) {
	c.mu.RLock()
	base := c.base
	c.mu.RUnlock()
	if err := base.Err(); err != nil {
		return "", fmt.Errorf("coordinator stopped: %w", err)
	}
	if !c.cycleMu.TryLock() {
		return "", ErrCycleRunning
	}
	id := c.newID()
	go func() {
		defer c.cycleMu.Unlock()
		ctx, cancel := context.WithTimeout(base, 5*time.Minute)
		defer cancel()
		if err := c.cycle(ctx, id); err != nil {
			log.Printf("[refresh] cycle %s failed: %v", id, err)
		}
	}()
	return id, nil
}

// Run refreshes immediately and then on every tick until ctx is done. Ticks
// that arrive while a cycle is running are skipped.
func (c *Coordinator) Run(ctx context.Context) {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		log.Printf("[refresh] initial load failed: %v", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.cycleMu.TryLock() {
				log.Printf("[refresh] tick skipped, cycle still running")
				continue
			}
			if err := c.cycle(ctx, c.newID()); err != nil {
				log.Printf("[refresh] cycle failed: %v", err)
			}
			c.cycleMu.Unlock()
		}
	}
}

// cycle must be called with cycleMu held.
func (c *Coordinator) cycle(ctx context.Context, id string) error {
	start := c.now()
	c.mu.Lock()
	c.status.CycleID = id
	c.status.LastAttempt = start
	c.mu.Unlock()

	if err := c.machine.FireCtx(ctx, triggerStart); err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}

	snap, loadErr := c.load(ctx, id)
	if loadErr == nil {
		c.store.Replace(snap)
		c.mu.Lock()
		c.status.LastSuccess = snap.LoadedAt
		c.status.LastError = ""
		c.mu.Unlock()
		c.metrics.published(snap)
		log.Printf("[refresh] cycle %s published %d universities, %d institution rows, %d catalog entries",
			id, len(snap.Beca18.Universities), len(snap.Institutions.Records), len(snap.Integral.Entries))
		_ = c.machine.FireCtx(ctx, triggerSucceed)
	} else {
		c.mu.Lock()
		c.status.LastError = LoadErrorPrefix + loadErr.Error()
		c.mu.Unlock()
		_ = c.machine.FireCtx(ctx, triggerFail)
	}

	c.publish()

	if err := c.machine.FireCtx(ctx, triggerSettle); err != nil {
		log.Printf("[refresh] settle: %v", err)
	}

	outcome := "success"
	if loadErr != nil {
		outcome = "failure"
	}
	c.metrics.observe(outcome, c.now().Sub(start))
	return loadErr
}

// load retrieves the three datasets concurrently and joins on all of them.
// The snapshot is returned only when every retrieval succeeded.
func (c *Coordinator) load(ctx context.Context, id string) (*dataset.Snapshot, error) {
	snap := &dataset.Snapshot{CycleID: id}
	var errs [3]error
	var g errgroup.Group

	g.Go(func() error {
		doc, err := c.source.LoadBeca18(ctx)
		snap.Beca18, errs[0] = doc, err
		return nil
	})
	g.Go(func() error {
		doc, err := c.source.LoadInstitutions(ctx)
		snap.Institutions, errs[1] = doc, err
		return nil
	})
	g.Go(func() error {
		doc, err := c.source.LoadIntegral(ctx)
		snap.Integral, errs[2] = doc, err
		return nil
	})
	_ = g.Wait()

	var result *multierror.Error
	for i, err := range errs {
		if err != nil {
			result = multierror.Append(result, &RetrievalError{Kind: ingest.Kinds[i], Err: err})
		}
	}
	if result != nil {
		result.ErrorFormat = joinErrors
		return nil, result
	}
	if snap.Beca18 == nil || snap.Institutions == nil || snap.Integral == nil {
		return nil, errors.New("source returned no document")
	}
	snap.LoadedAt = c.now()
	return snap, nil
}

func (c *Coordinator) publish() {
	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}

	status := c.Status()
	results := c.projector.ProjectAll(c.store.Current())
	for i := range results {
		results[i].Error = status.LastError
	}
	for _, l := range listeners {
		l(status, results)
	}
}

func joinErrors(es []error) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
