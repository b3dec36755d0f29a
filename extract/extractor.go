package extract

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/c360studio/semexhibit/fetch"
	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/vocabulary"
)

// Extractor pulls typed values out of resolved graph nodes. All methods
// are pure transforms over the graph's current state plus whatever
// on-demand resolution they trigger through the navigator.
type Extractor struct {
	nav      *graph.Navigator
	blurb    *fetch.BlurbClient
	media    *fetch.MediaClient
	language string
	logger   *slog.Logger
}

// NewExtractor creates an extractor that prefers literals tagged with
// language (for example "en") wherever a language filter applies.
func NewExtractor(nav *graph.Navigator, blurb *fetch.BlurbClient, media *fetch.MediaClient, language string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		nav:      nav,
		blurb:    blurb,
		media:    media,
		language: language,
		logger:   logger,
	}
}

// Title returns the node's name in the target language together with its
// slug. The last matching literal wins when multiple name triples exist.
func (e *Extractor) Title(id graph.Identifier) (title, slug string, ok bool) {
	for _, o := range e.nav.Objects(id, vocabulary.Name) {
		if lit, isLit := o.(graph.Literal); isLit && lit.Language == e.language {
			title = lit.Value
			ok = true
		}
	}
	if !ok {
		return "", "", false
	}
	return title, Slugify(title), true
}

// Credit returns the node's attribution literal verbatim, with no
// language filter. The last triple wins.
func (e *Extractor) Credit(id graph.Identifier) (credit string, ok bool) {
	for _, o := range e.nav.Objects(id, vocabulary.AttributionName) {
		if lit, isLit := o.(graph.Literal); isLit {
			credit = lit.Value
			ok = true
		}
	}
	return credit, ok
}

// Date returns the node's establishment date literal, if any.
func (e *Extractor) Date(id graph.Identifier) (string, bool) {
	for _, o := range e.nav.Objects(id, vocabulary.DateEstablished) {
		if lit, isLit := o.(graph.Literal); isLit {
			return lit.Value, true
		}
	}
	return "", false
}

// Rights returns the node's license reference, if any.
func (e *Extractor) Rights(id graph.Identifier) (string, bool) {
	for _, o := range e.nav.Objects(id, vocabulary.License) {
		switch v := o.(type) {
		case graph.Identifier:
			return string(v), true
		case graph.Literal:
			return v.Value, true
		}
	}
	return "", false
}

// Description resolves the node's topic article and, when it is typed as a
// document, fetches a bounded text snippet from the description service.
// Failures are logged and reported as absence; this never returns an error.
func (e *Extractor) Description(ctx context.Context, id graph.Identifier) (string, bool) {
	var text string
	var found bool
	for _, o := range e.nav.Objects(id, vocabulary.TopicArticle) {
		article, isID := o.(graph.Identifier)
		if !isID {
			continue
		}
		if err := e.nav.Ensure(ctx, article); err != nil {
			e.logger.Debug("could not resolve article", "article", string(article), "error", err)
			continue
		}
		if !e.nav.IsType(article, vocabulary.DocumentType) {
			continue
		}
		snippet, err := e.blurb.Blurb(ctx, vocabulary.ServiceKey(string(article)))
		if err != nil {
			e.logger.Debug("could not download description", "article", string(article), "error", err)
			continue
		}
		text = snippet
		found = true
	}
	return text, found
}

// TypeList renders all of the node's rdf:type assertions as a single
// comma-joined markup field, each type a hyperlink whose display text is
// the IRI's trailing path segment.
func (e *Extractor) TypeList(id graph.Identifier) (string, bool) {
	var links []string
	for _, o := range e.nav.Objects(id, vocabulary.RDFType) {
		tid, isID := o.(graph.Identifier)
		if !isID {
			continue
		}
		links = append(links, fmt.Sprintf(`<a href="%s">%s</a>`,
			html.EscapeString(string(tid)), html.EscapeString(vocabulary.LastSegment(string(tid)))))
	}
	if len(links) == 0 {
		return "", false
	}
	return strings.Join(links, ", "), true
}
