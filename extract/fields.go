package extract

// Exhibit create form fields.
const (
	FieldExhibitTitle       = "title"
	FieldExhibitSlug        = "slug"
	FieldExhibitCredits     = "credits"
	FieldExhibitDescription = "description"
)

// Item create form fields. The indexed element keys follow the CMS's
// Dublin Core element table (38 coverage, 40 date, 41 description,
// 43 identifier, 47 rights, 48 source, 49 subject, 50 title).
const (
	FieldPublic      = "public"
	FieldTitle       = "Elements[50][0][text]"
	FieldSubject     = "Elements[49][0][text]"
	FieldDescription = "Elements[41][0][text]"
	FieldSource      = "Elements[48][0][text]"
	FieldDate        = "Elements[40][0][text]"
	FieldRights      = "Elements[47][0][text]"
	FieldIdentifier  = "Elements[43][0][text]"
	FieldCoverage    = "Elements[38][0][text]"
)

// Map-display fields populated from a geolocation node.
const (
	FieldGeoCoverage  = "geocoverage"
	FieldGeoZoom      = "geo_zoom"
	FieldGeoCenterX   = "geo_center_x"
	FieldGeoCenterY   = "geo_center_y"
	FieldGeoBaseLayer = "geo_base_layer"
	FieldGeoLabel     = "geo_label"
	FieldGeoShowMap   = "geo_show_map"
)

const (
	defaultZoom      = "14"
	defaultBaseLayer = "OpenStreetMap"
)
