package telemetry

// Span attribute keys.
const (
	AttrListingID    = "listing.id"
	AttrRadiusMeters = "nearby.radius_meters"
	AttrScanned      = "nearby.scanned"
	AttrMatched      = "nearby.matched"
	AttrPhotoURL     = "photo.url"
)
