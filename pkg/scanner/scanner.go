// Package scanner runs the background memory extraction for a user.
//
// A run plans which documents need attention (BuildPlan), holds the user's
// busy flag for its duration, and feeds each candidate oldest first through
// the oracle, merging the proposed actions with memory.Service.Apply. Later
// documents therefore win over earlier ones.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/memory"
	"github.com/jasonzFong/aura-editor/pkg/oracle"
	"github.com/jasonzFong/aura-editor/pkg/storage"
	"github.com/jasonzFong/aura-editor/pkg/textextract"
)

// ErrScanInProgress is returned when a scan for the same user is already
// running in this process.
var ErrScanInProgress = errors.New("scan already in progress")

// FailurePolicy decides what happens to a document whose oracle call fails
// or returns an unparsable response.
type FailurePolicy string

const (
	// PolicyStamp marks the document scanned anyway so a permanently bad
	// response cannot be retried forever.
	PolicyStamp FailurePolicy = "stamp"

	// PolicyRetry leaves the failed document unscanned so the next run
	// retries it. Later documents in the run are still processed.
	PolicyRetry FailurePolicy = "retry"
)

// ParsePolicy parses a policy name. Empty selects PolicyStamp.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyStamp:
		return PolicyStamp, nil
	case PolicyRetry:
		return PolicyRetry, nil
	}
	return "", fmt.Errorf("unknown oracle failure policy %q (supported: stamp, retry)", s)
}

// Extractor proposes memory actions for a document.
type Extractor interface {
	Extract(ctx context.Context, req oracle.Request) ([]memory.Action, error)
}

// Store is the storage the orchestrator needs.
type Store interface {
	storage.UserStore
	storage.DocumentStore
	storage.FactStore
}

// Config configures an Orchestrator.
type Config struct {
	Store     Store
	Memory    *memory.Service
	Extractor Extractor
	Policy    FailurePolicy
	Logger    *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Report summarises a run.
type Report struct {
	UserID string

	// Skip is set when the plan held no work.
	Skip string

	Documents      int
	OracleFailures int
	Outcomes       map[memory.Outcome]int
}

// Orchestrator runs scans.
type Orchestrator struct {
	store     Store
	memory    *memory.Service
	extractor Extractor
	logger    *slog.Logger
	now       func() time.Time

	policy  atomic.Value // FailurePolicy
	running sync.Map     // user id -> struct{}
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		store:     cfg.Store,
		memory:    cfg.Memory,
		extractor: cfg.Extractor,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.now == nil {
		o.now = time.Now
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyStamp
	}
	o.policy.Store(policy)
	return o
}

// Policy returns the active failure policy.
func (o *Orchestrator) Policy() FailurePolicy {
	return o.policy.Load().(FailurePolicy)
}

// SetPolicy swaps the failure policy used by subsequent documents.
func (o *Orchestrator) SetPolicy(p FailurePolicy) {
	o.policy.Store(p)
}

// ScanUser runs one scan for a user. Only one run per user may be active in
// this process at a time.
func (o *Orchestrator) ScanUser(ctx context.Context, userID string) (*Report, error) {
	if _, loaded := o.running.LoadOrStore(userID, struct{}{}); loaded {
		return nil, ErrScanInProgress
	}
	defer o.running.Delete(userID)

	user, err := o.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	report := &Report{UserID: userID, Outcomes: make(map[memory.Outcome]int)}

	plan, err := BuildPlan(ctx, o.store, userID, user.Settings.BackgroundScan, o.now())
	if err != nil {
		return nil, err
	}
	if plan.Skip != "" {
		report.Skip = plan.Skip
		if plan.Skip == SkipConverged {
			o.logger.Info("scanner: skipping converged user", "user_id", userID)
		}
		return report, nil
	}

	guard, err := acquireBusy(ctx, o.store, userID, o.logger)
	if err != nil {
		return nil, err
	}
	defer guard.release()

	o.logger.Info("scanner: scanning user", "user_id", userID, "documents", len(plan.Candidates))

	for _, doc := range plan.Candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := o.scanDocument(ctx, userID, doc, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// scanDocument processes one document. A cancelled ctx leaves the document
// unstamped and ends the run with ctx's error.
func (o *Orchestrator) scanDocument(ctx context.Context, userID string, doc *journal.Document, report *Report) error {
	report.Documents++

	text := textextract.Extract(doc.Content)
	if strings.TrimSpace(text) == "" {
		return o.stamp(ctx, doc)
	}

	facts, err := o.store.ListFacts(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing facts: %w", err)
	}

	actions, err := o.extractor.Extract(ctx, oracle.Request{
		Text:         text,
		DocumentTime: doc.UpdatedAt,
		Now:          o.now(),
		Facts:        facts,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		report.OracleFailures++
		policy := o.Policy()
		o.logger.Warn("scanner: oracle failed",
			"user_id", userID,
			"document_id", doc.ID,
			"policy", string(policy),
			"error", err,
		)
		if policy == PolicyRetry {
			return nil
		}
		return o.stamp(ctx, doc)
	}

	for _, action := range actions {
		outcome, err := o.memory.Apply(ctx, userID, doc.ID, action)
		if err != nil {
			return fmt.Errorf("applying action to document %s: %w", doc.ID, err)
		}
		report.Outcomes[outcome]++
		o.logger.Debug("scanner: applied action",
			"user_id", userID,
			"document_id", doc.ID,
			"outcome", string(outcome),
		)
	}

	return o.stamp(ctx, doc)
}

func (o *Orchestrator) stamp(ctx context.Context, doc *journal.Document) error {
	if err := o.store.MarkScanned(ctx, doc.ID, o.now().UTC()); err != nil {
		return fmt.Errorf("marking document %s scanned: %w", doc.ID, err)
	}
	return nil
}
