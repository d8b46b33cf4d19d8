package core

import "time"

// Pipeline runs the classification stages for one warehouse class.
type Pipeline struct {
	rules Rules
}

// NewPipeline returns a pipeline using rules. The rules are validated so a
// bad threshold fails here rather than per record.
func NewPipeline(rules Rules) (*Pipeline, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{rules: rules}, nil
}

// Rules returns the rules the pipeline was built with.
func (p *Pipeline) Rules() Rules { return p.rules }

// Classify filters set to the warehouse class, derives expiry fields, runs the
// three signal classifiers, drops records with no signal, and resolves each
// remaining record to one category.
func (p *Pipeline) Classify(set RecordSet, filter WarehouseFilter, asOf time.Time) RecordSet {
	s := filter.Apply(set)
	s = ComputeExpiry(s, asOf)
	s = ClassifyExpiryCategory(s)
	s = ClassifyRecency(s, asOf, p.rules.RecencyDays)
	s = ClassifyStorage(s, p.rules)
	s = DropUnflagged(s)
	return ClassifyComposite(s)
}

// Report is a finished classification report: the sorted records and their
// projection.
type Report struct {
	Records RecordSet
	Table   Table
}

// Summary counts records per category.
func (r *Report) Summary() map[Category]int {
	out := make(map[Category]int, len(CategoryOrder))
	for _, rec := range r.Records.Records {
		out[rec.Category]++
	}
	return out
}

// Report classifies set, carries forward the prior period's plans, sorts by
// category, and projects the report columns.
func (p *Pipeline) Report(set RecordSet, filter WarehouseFilter, asOf time.Time, prior *PriorPeriod) (*Report, error) {
	s := p.Classify(set, filter, asOf)
	s = MergePrior(s, prior)
	s = SortByCategory(s)
	t, err := Project(s, ReportColumnsWithPrior())
	if err != nil {
		return nil, err
	}
	return &Report{Records: s, Table: t}, nil
}
