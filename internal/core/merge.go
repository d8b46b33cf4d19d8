package core

// PriorPeriod is what the previous period's report contributes to the current one.
// HasPlanColumn is false when the prior report carried no disposition-plan
// column at all, which is different from carrying an empty one.
type PriorPeriod struct {
	HasPlanColumn bool
	Plans         map[Key]string
}

// NewPriorPeriod builds a prior period from records that carry a disposition
// plan. When a key occurs more than once the first occurrence wins.
func NewPriorPeriod(records []Record, hasPlanColumn bool) *PriorPeriod {
	p := &PriorPeriod{HasPlanColumn: hasPlanColumn, Plans: make(map[Key]string, len(records))}
	if !hasPlanColumn {
		return p
	}
	for _, r := range records {
		if _, seen := p.Plans[r.Key()]; seen {
			continue
		}
		p.Plans[r.Key()] = r.DispositionPlan
	}
	return p
}

// Lookup returns the plan recorded for k last period.
func (p *PriorPeriod) Lookup(k Key) (string, bool) {
	if p == nil || !p.HasPlanColumn {
		return "", false
	}
	plan, ok := p.Plans[k]
	return plan, ok
}

// MergePrior attaches last period's disposition plan to each current record.
//
// With no prior period, or one without a plan column, every current
// disposition plan is reset to empty so stale values are not reported.
// Records absent from the prior period get an empty prior plan.
func MergePrior(current RecordSet, prior *PriorPeriod) RecordSet {
	usable := prior != nil && prior.HasPlanColumn
	return current.mapRecords(func(r Record) Record {
		if !usable {
			r.DispositionPlan = ""
			r.PriorPlan = ""
			return r
		}
		r.PriorPlan, _ = prior.Lookup(r.Key())
		return r
	}, ColDispositionPlan, ColPriorPlan)
}
