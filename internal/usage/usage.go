// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usage accounts for Messages API token consumption across a run.
package usage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/peirush/pkg/types"
)

// Tracker accumulates token counts per model plus run-wide totals. It is
// updated between sequential completion calls on a single goroutine; nothing
// in the pipeline writes to it concurrently, so it carries no lock.
type Tracker struct {
	perModel map[string]types.Usage
	total    types.Usage
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{perModel: make(map[string]types.Usage)}
}

// Record adds one completion call's token counts under the given model.
func (t *Tracker) Record(model string, u types.Usage) {
	m := t.perModel[model]
	m.InputTokens += u.InputTokens
	m.OutputTokens += u.OutputTokens
	t.perModel[model] = m

	t.total.InputTokens += u.InputTokens
	t.total.OutputTokens += u.OutputTokens
}

// Total returns the run-wide token counts.
func (t *Tracker) Total() types.Usage {
	return t.total
}

// PerModel returns a copy of the per-model token counts.
func (t *Tracker) PerModel() map[string]types.Usage {
	out := make(map[string]types.Usage, len(t.perModel))
	for k, v := range t.perModel {
		out[k] = v
	}
	return out
}

// Report formats the accumulated usage as a deterministic multi-line summary:
// one line per model in sorted order, then the overall totals.
func (t *Tracker) Report() string {
	models := make([]string, 0, len(t.perModel))
	for m := range t.perModel {
		models = append(models, m)
	}
	sort.Strings(models)

	var b strings.Builder
	b.WriteString("Total usage:\n")
	for _, m := range models {
		u := t.perModel[m]
		fmt.Fprintf(&b, "Model: %s - Input tokens: %d, Output tokens: %d\n", m, u.InputTokens, u.OutputTokens)
	}
	fmt.Fprintf(&b, "Overall - Input tokens: %d, Output tokens: %d", t.total.InputTokens, t.total.OutputTokens)
	return b.String()
}
