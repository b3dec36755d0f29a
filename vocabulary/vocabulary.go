// Package vocabulary provides the namespace IRIs and predicate constants
// used to navigate the source linked-data graph.
package vocabulary

import "strings"

// Base namespace IRIs for the vocabularies the importer understands.
const (
	// RDF is the W3C RDF syntax namespace.
	RDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// CC is the Creative Commons namespace, used for attribution and
	// licensing metadata.
	CC = "http://creativecommons.org/ns#"

	// FB is the Freebase namespace that most domain predicates live in.
	FB = "http://rdf.freebase.com/ns/"

	// XHTML is the XHTML vocabulary namespace.
	XHTML = "http://www.w3.org/1999/xhtml/vocab#"
)

// Predicates followed during graph navigation and field extraction.
const (
	RDFType = RDF + "type"

	Name            = FB + "type.object.name"
	TopicArticle    = FB + "common.topic.article"
	TopicImage      = FB + "common.topic.image"
	DocumentType    = FB + "common.document"
	MediaType       = FB + "type.content.media_type"
	Geolocation     = FB + "location.location.geolocation"
	Longitude       = FB + "location.geocode.longitude"
	Latitude        = FB + "location.geocode.latitude"
	DateEstablished = FB + "protected_sites.protected_site.date_established"
	ProtectedSite   = FB + "protected_sites.protected_site"
	ListedSites     = FB + "protected_sites.natural_or_cultural_site_listing.listed_sites"

	AttributionName = CC + "attributionName"
	License         = CC + "license"
)

// Default endpoints of the secondary text-snippet and raw-bytes services.
const (
	BlurbBase = "http://www.freebase.com/api/trans/blurb/"
	RawBase   = "http://www.freebase.com/api/trans/raw/"
)

// LastSegment returns the portion of an IRI after the final slash. It is
// used both for display text and for deriving secondary-service keys.
func LastSegment(iri string) string {
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// ServiceKey derives the path key the secondary services expect from an
// identifier: the IRI's last path segment with dots exchanged for slashes.
// Freebase identifiers end in a dotted machine ID ("m.0dgcb") while the
// trans services address the same object as a path ("m/0dgcb").
func ServiceKey(iri string) string {
	return strings.ReplaceAll(LastSegment(iri), ".", "/")
}
