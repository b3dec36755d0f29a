// Package pipeline orchestrates one import run: exhibit-level extraction
// and submission, then depth-first item-level processing of every child
// node reachable from the root.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semexhibit/extract"
	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/metric"
	"github.com/c360studio/semexhibit/omeka"
)

// Pipeline drives a run. It owns the graph for the run's duration; the
// navigator and extractor only read it and request fetches through it.
type Pipeline struct {
	nav       *graph.Navigator
	extractor *extract.Extractor
	cms       *omeka.Client
	listing   []graph.Identifier
	metrics   *metric.Metrics
	logger    *slog.Logger
}

// New creates a pipeline. listing is the predicate path from the root
// exhibit node to its item nodes. metrics may be nil.
func New(nav *graph.Navigator, extractor *extract.Extractor, cms *omeka.Client, listing []graph.Identifier, metrics *metric.Metrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		nav:       nav,
		extractor: extractor,
		cms:       cms,
		listing:   listing,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run resolves the root node, submits the exhibit, then submits every
// child item. One item's failure is logged and does not abort the rest;
// there is no rollback of already-submitted work.
func (p *Pipeline) Run(ctx context.Context, root graph.Identifier) error {
	if err := p.nav.Ensure(ctx, root); err != nil {
		return fmt.Errorf("fetch exhibit root: %w", err)
	}

	if err := p.submitExhibit(ctx, root); err != nil {
		return err
	}

	children, err := p.nav.Drill(ctx, root, p.listing)
	if err != nil {
		return fmt.Errorf("enumerate items: %w", err)
	}
	p.logger.Info("enumerated items", "count", len(children))

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.submitItem(ctx, child); err != nil {
			// One malformed node must not sink the whole exhibit.
			p.logger.Warn("item submission failed", "item", string(child), "error", err)
		}
	}
	return nil
}

func (p *Pipeline) submitExhibit(ctx context.Context, root graph.Identifier) error {
	fields := extract.NewFieldSet()

	if title, slug, ok := p.extractor.Title(root); ok {
		fields.Set(extract.FieldExhibitTitle, title)
		fields.Set(extract.FieldExhibitSlug, slug)
	} else {
		p.logger.Warn("exhibit has no title in the target language", "root", string(root))
	}
	if credit, ok := p.extractor.Credit(root); ok {
		fields.Set(extract.FieldExhibitCredits, credit)
	}
	if desc, ok := p.extractor.Description(ctx, root); ok {
		fields.Set(extract.FieldExhibitDescription, desc)
	}

	err := p.cms.AddExhibit(ctx, fields)
	if p.metrics != nil {
		p.metrics.RecordSubmission("exhibit", err)
	}
	if err != nil {
		return fmt.Errorf("submit exhibit: %w", err)
	}
	return nil
}

func (p *Pipeline) submitItem(ctx context.Context, item graph.Identifier) error {
	if err := p.nav.Ensure(ctx, item); err != nil {
		return err
	}

	fields := extract.NewFieldSet()
	fields.Set(extract.FieldPublic, "1")

	var title string
	if t, _, ok := p.extractor.Title(item); ok {
		title = t
		fields.Set(extract.FieldTitle, title)
	}
	if types, ok := p.extractor.TypeList(item); ok {
		fields.Set(extract.FieldSubject, types)
	}
	if desc, ok := p.extractor.Description(ctx, item); ok {
		fields.Set(extract.FieldDescription, desc)
	}
	if credit, ok := p.extractor.Credit(item); ok {
		fields.Set(extract.FieldSource, credit)
	}
	if date, ok := p.extractor.Date(item); ok {
		fields.Set(extract.FieldDate, date)
	}
	if rights, ok := p.extractor.Rights(item); ok {
		fields.Set(extract.FieldRights, rights)
	}
	fields.Set(extract.FieldIdentifier, string(item))

	p.extractor.Coverage(ctx, item, title, fields)
	p.extractor.Images(ctx, item, fields)

	err := p.cms.AddItem(ctx, fields)
	if p.metrics != nil {
		p.metrics.RecordSubmission("item", err)
	}
	return err
}
