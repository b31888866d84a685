package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// Reasons a Plan holds no work.
const (
	SkipDisabled     = "disabled"
	SkipNoCandidates = "no candidates"
	SkipConverged    = "converged"
)

// Plan is the per-user decision of what to scan.
type Plan struct {
	// Candidates are the documents to process, oldest UpdatedAt first.
	Candidates []*journal.Document

	// Skip names why there is nothing to do. Empty when Candidates is set.
	Skip string

	Cutoff    time.Time
	Threshold time.Time
}

// PlanStore is the storage a Plan is built from.
type PlanStore interface {
	storage.DocumentStore
	storage.FactStore
}

// BuildPlan selects a user's scan candidates.
//
// A document is a candidate when it is not deleted, was updated within the
// skip window, and was either never scanned or scanned before the interval
// threshold and edited since. When every candidate is older than the newest
// system authored fact the user is considered converged and nothing is
// scanned.
func BuildPlan(ctx context.Context, store PlanStore, userID string, settings journal.ScanSettings, now time.Time) (*Plan, error) {
	if !settings.Enabled {
		return &Plan{Skip: SkipDisabled}, nil
	}

	plan := &Plan{
		Cutoff:    now.Add(-settings.SkipOlderThan()),
		Threshold: now.Add(-settings.Interval()),
	}

	docs, err := store.ScanCandidates(ctx, userID, plan.Cutoff, plan.Threshold)
	if err != nil {
		return nil, fmt.Errorf("selecting scan candidates: %w", err)
	}
	if len(docs) == 0 {
		plan.Skip = SkipNoCandidates
		return plan, nil
	}

	latestSystem, ok, err := store.LatestFactUpdate(ctx, userID, journal.ProvenanceSystem)
	if err != nil {
		return nil, fmt.Errorf("reading latest system fact: %w", err)
	}
	if ok && latestDocUpdate(docs).Before(latestSystem) {
		plan.Skip = SkipConverged
		return plan, nil
	}

	plan.Candidates = docs
	return plan, nil
}

func latestDocUpdate(docs []*journal.Document) time.Time {
	var latest time.Time
	for _, d := range docs {
		if d.UpdatedAt.After(latest) {
			latest = d.UpdatedAt
		}
	}
	return latest
}
