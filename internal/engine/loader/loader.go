// Package loader fetches the six entity lists concurrently and joins them
// into one snapshot set.
package loader

import (
	"context"
	"sort"
	"time"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/common/metrics"
	"recruit-automation/internal/models"

	"golang.org/x/sync/errgroup"
)

// EntityProvider returns every snapshot of one kind.
type EntityProvider interface {
	FetchEntityList(ctx context.Context, kind models.EntityKind) ([]models.Entity, error)
}

// Result is the joined outcome of one load. Set holds whatever succeeded;
// Failures holds one ENTITY_FETCH_FAILED error per kind that did not.
type Result struct {
	Set      *models.EntitySet
	Failures map[models.EntityKind]error
}

// FailedKinds lists the kinds whose fetch failed, sorted.
func (r Result) FailedKinds() []models.EntityKind {
	out := make([]models.EntityKind, 0, len(r.Failures))
	for k := range r.Failures {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Warnings renders Failures as "kind: message" strings.
func (r Result) Warnings() []string {
	var out []string
	for _, k := range r.FailedKinds() {
		out = append(out, string(k)+": "+r.Failures[k].Error())
	}
	return out
}

type Loader struct {
	provider EntityProvider
	timeout  time.Duration
	logger   logger.Logger
}

// New returns a loader; timeout bounds each individual fetch, zero means none.
func New(provider EntityProvider, timeout time.Duration, log logger.Logger) *Loader {
	return &Loader{
		provider: provider,
		timeout:  timeout,
		logger:   logger.ForComponent(log, "entity-loader"),
	}
}

type fetched struct {
	kind     models.EntityKind
	entities []models.Entity
	err      error
}

// Load issues one fetch per entity kind in parallel and waits for all of
// them. A failed fetch never cancels the others.
func (l *Loader) Load(ctx context.Context) Result {
	kinds := models.EntityKinds()
	results := make(chan fetched, len(kinds))

	var g errgroup.Group
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			fctx := ctx
			if l.timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, l.timeout)
				defer cancel()
			}

			entities, err := l.provider.FetchEntityList(fctx, kind)
			if err != nil {
				l.logger.Warn("entity fetch failed", map[string]interface{}{
					"kind":  string(kind),
					"error": err.Error(),
				})
				metrics.EntityFetchFailures.WithLabelValues(string(kind)).Inc()
			}
			results <- fetched{kind: kind, entities: entities, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	res := Result{Set: models.NewEntitySet(), Failures: make(map[models.EntityKind]error)}
	for f := range results {
		if f.err != nil {
			res.Failures[f.kind] = errors.NewEntityFetchFailedError(string(f.kind), f.err)
			continue
		}
		for _, e := range f.entities {
			res.Set.Add(e)
		}
	}

	l.logger.Debug("entities loaded", map[string]interface{}{
		"count":  res.Set.Len(),
		"failed": len(res.Failures),
	})
	return res
}
