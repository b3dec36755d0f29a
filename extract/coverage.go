package extract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/vocabulary"
)

// Coverage resolves the node's geolocation and populates the composite
// map-display fields: a well-known-text point in spherical-Mercator
// coordinates, zoom, center, base layer, a composed label, and the
// show-map flag. A geolocation with a missing or unparsable coordinate is
// skipped silently.
func (e *Extractor) Coverage(ctx context.Context, id graph.Identifier, title string, fs *FieldSet) {
	for _, o := range e.nav.Objects(id, vocabulary.Geolocation) {
		geo, isID := o.(graph.Identifier)
		if !isID {
			continue
		}
		if err := e.nav.Ensure(ctx, geo); err != nil {
			e.logger.Debug("could not resolve geolocation", "geo", string(geo), "error", err)
			continue
		}

		lon, okLon := e.coordinate(geo, vocabulary.Longitude)
		lat, okLat := e.coordinate(geo, vocabulary.Latitude)
		if !okLon || !okLat {
			e.logger.Debug("geolocation missing a coordinate", "geo", string(geo))
			continue
		}

		merc := project.WGS84.ToMercator(orb.Point{lon, lat})
		x := strconv.FormatFloat(merc[0], 'f', -1, 64)
		y := strconv.FormatFloat(merc[1], 'f', -1, 64)
		point := fmt.Sprintf("POINT(%s %s)", x, y)

		fs.Set(FieldCoverage, point)
		fs.Set(FieldGeoCoverage, point)
		fs.Set(FieldGeoZoom, defaultZoom)
		fs.Set(FieldGeoCenterX, x)
		fs.Set(FieldGeoCenterY, y)
		fs.Set(FieldGeoBaseLayer, defaultBaseLayer)
		fs.Set(FieldGeoLabel, fmt.Sprintf("%s (%.4f, %.4f)", title, lat, lon))
		fs.Set(FieldGeoShowMap, "1")
	}
}

// coordinate reads one floating-point literal off a geolocation node.
func (e *Extractor) coordinate(geo, predicate graph.Identifier) (float64, bool) {
	for _, o := range e.nav.Objects(geo, predicate) {
		lit, isLit := o.(graph.Literal)
		if !isLit {
			continue
		}
		v, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			e.logger.Debug("unparsable coordinate", "geo", string(geo), "value", lit.Value)
			continue
		}
		return v, true
	}
	return 0, false
}
