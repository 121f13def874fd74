// Package reconcile merges enriched person records into their originals and
// reports which fields were filled or updated.
package reconcile

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

// Strategy controls how a non-empty original value is treated when the
// enriched value differs.
type Strategy string

const (
	// Overwrite replaces differing values with the enriched one.
	Overwrite Strategy = "overwrite"
	// FillOnly keeps every non-empty original value and only fills gaps.
	FillOnly Strategy = "fill_only"
)

// ParseStrategy validates a strategy name. Empty means Overwrite.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Overwrite:
		return Overwrite, nil
	case FillOnly:
		return FillOnly, nil
	default:
		return "", eris.Errorf("reconcile: unknown strategy %q", s)
	}
}

const noChanges = "No changes"

// Result is the outcome of reconciling one record.
type Result struct {
	Original model.Person
	Merged   model.Person
	Filled   []model.Field
	Updated  []model.Field

	// Matched is true when an enriched record was found for the original.
	Matched bool
	// Extra is true when the enriched record had no corresponding original.
	Extra bool
}

// Status summarises the changes, e.g. "Updated: Job Title; Filled: Email Address".
func (r Result) Status() string {
	var parts []string
	if len(r.Updated) > 0 {
		parts = append(parts, "Updated: "+joinFields(r.Updated))
	}
	if len(r.Filled) > 0 {
		parts = append(parts, "Filled: "+joinFields(r.Filled))
	}
	if len(parts) == 0 {
		return noChanges
	}
	return strings.Join(parts, "; ")
}

// Changed reports whether any field was filled or updated.
func (r Result) Changed() bool {
	return len(r.Filled) > 0 || len(r.Updated) > 0
}

// Touched reports whether f was filled or updated.
func (r Result) Touched(f model.Field) bool {
	for _, x := range r.Updated {
		if x == f {
			return true
		}
	}
	for _, x := range r.Filled {
		if x == f {
			return true
		}
	}
	return false
}

// Outcome classifies the result for the run ledger.
func (r Result) Outcome() model.Outcome {
	switch {
	case len(r.Updated) > 0:
		return model.OutcomeUpdated
	case len(r.Filled) > 0:
		return model.OutcomeFilled
	default:
		return model.OutcomeUnchanged
	}
}

func joinFields(fields []model.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Engine reconciles enriched records against originals.
type Engine struct {
	strategy Strategy
}

// New creates an Engine. An unknown strategy falls back to Overwrite.
func New(strategy Strategy) *Engine {
	if strategy != FillOnly {
		strategy = Overwrite
	}
	return &Engine{strategy: strategy}
}

// Strategy returns the engine's strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// enrichedValues flattens an enriched record onto the tracked fields.
func enrichedValues(p surfe.EnrichedPerson) map[model.Field]string {
	return map[model.Field]string{
		model.FieldFirstName:   p.FirstName,
		model.FieldLastName:    p.LastName,
		model.FieldCompanyName: p.CompanyName,
		model.FieldDomain:      p.Domain(),
		model.FieldJobTitle:    p.JobTitle,
		model.FieldLinkedInURL: p.LinkedInURL,
		model.FieldEmail:       surfe.BestEmail(p.Emails),
		model.FieldPhone:       surfe.BestPhone(p.MobilePhones),
	}
}

// Reconcile merges enriched into original. Every original value survives
// unless a non-empty enriched value replaces it.
func (e *Engine) Reconcile(original model.Person, enriched surfe.EnrichedPerson) Result {
	res := Result{Original: original, Merged: original, Matched: true}
	if res.Merged.ExternalID == "" {
		res.Merged.ExternalID = enriched.ExternalID
	}

	values := enrichedValues(enriched)
	for _, fields := range [][]model.Field{model.ScalarFields, model.ContactFields} {
		for _, f := range fields {
			e.compare(&res, f, original.Get(f), values[f])
		}
	}
	return res
}

func (e *Engine) compare(res *Result, f model.Field, orig, enriched string) {
	switch {
	case enriched == "" || orig == enriched:
	case orig == "":
		res.Filled = append(res.Filled, f)
		res.Merged.Set(f, enriched)
	case e.strategy == Overwrite:
		res.Updated = append(res.Updated, f)
		res.Merged.Set(f, enriched)
	}
}

// ReconcileBatch matches enriched records to originals by external id
// (case-insensitive, last duplicate wins). It returns one result per original
// in input order, followed by one result per enriched record that matched no
// original.
func (e *Engine) ReconcileBatch(originals []model.Person, enriched []surfe.EnrichedPerson) []Result {
	byID := make(map[string]int, len(enriched))
	for i, p := range enriched {
		if key := matchKey(p.ExternalID); key != "" {
			byID[key] = i
		}
	}

	used := make(map[int]bool, len(enriched))
	results := make([]Result, 0, len(originals))
	for _, orig := range originals {
		idx, ok := byID[matchKey(orig.ExternalID)]
		if !ok || matchKey(orig.ExternalID) == "" {
			results = append(results, Result{Original: orig, Merged: orig})
			continue
		}
		used[idx] = true
		results = append(results, e.Reconcile(orig, enriched[idx]))
	}

	for i, p := range enriched {
		if used[i] {
			continue
		}
		if key := matchKey(p.ExternalID); key != "" && byID[key] != i {
			continue
		}
		res := e.Reconcile(model.Person{ExternalID: p.ExternalID}, p)
		res.Matched = false
		res.Extra = true
		results = append(results, res)
	}
	return results
}

func matchKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
