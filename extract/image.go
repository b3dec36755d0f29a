package extract

import (
	"context"
	"strings"

	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/vocabulary"
)

// Images resolves every image node referenced by id, downloads its binary
// content from the raw-bytes service, and attaches it under an ordinal
// key. A failed download or unresolvable node drops that one image only.
func (e *Extractor) Images(ctx context.Context, id graph.Identifier, fs *FieldSet) {
	for _, o := range e.nav.Objects(id, vocabulary.TopicImage) {
		img, isID := o.(graph.Identifier)
		if !isID {
			continue
		}
		if err := e.nav.Ensure(ctx, img); err != nil {
			e.logger.Debug("could not resolve image", "image", string(img), "error", err)
			continue
		}

		data, err := e.media.Raw(ctx, vocabulary.ServiceKey(string(img)))
		if err != nil {
			e.logger.Debug("could not download image", "image", string(img), "error", err)
			continue
		}

		name := e.imageName(img)
		name = withExtension(name, e.mediaType(img))
		fs.AddFile(name, data)
		e.logger.Debug("attached image", "image", string(img), "name", name, "bytes", len(data))
	}
}

// imageName picks a display name for an image node: its name literal in
// the target language, else a language-neutral one, else the identifier's
// trailing path segment.
func (e *Extractor) imageName(img graph.Identifier) string {
	var neutral string
	for _, o := range e.nav.Objects(img, vocabulary.Name) {
		lit, isLit := o.(graph.Literal)
		if !isLit {
			continue
		}
		if lit.Language == e.language {
			return lit.Value
		}
		if !lit.HasLanguage() {
			neutral = lit.Value
		}
	}
	if neutral != "" {
		return neutral
	}
	return vocabulary.LastSegment(string(img))
}

// mediaType returns the image node's declared media-type literal, if any.
func (e *Extractor) mediaType(img graph.Identifier) string {
	for _, o := range e.nav.Objects(img, vocabulary.MediaType) {
		switch v := o.(type) {
		case graph.Literal:
			return v.Value
		case graph.Identifier:
			return string(v)
		}
	}
	return ""
}

// withExtension appends a file extension implied by the declared media
// type: a ".jpeg" media type gives ".jpg" unless the name already carries
// a JPEG extension, ".png" gives ".png", anything else leaves the name
// unchanged.
func withExtension(name, mediaType string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(mediaType, ".jpeg"):
		if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") {
			return name + ".jpg"
		}
	case strings.HasSuffix(mediaType, ".png"):
		if !strings.HasSuffix(lower, ".png") {
			return name + ".png"
		}
	}
	return name
}
