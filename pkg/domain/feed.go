package domain

import "net/url"

// AccessLevel is the distribution tier of a feed.
type AccessLevel string

// Access tiers, from most to least permissive.
const (
	AccessFree    AccessLevel = "free"
	AccessPaid    AccessLevel = "paid"
	AccessPrivate AccessLevel = "private"
)

// DefaultAccessLevel applies when the backend omits a feed's tier.
const DefaultAccessLevel = AccessPaid

// AccessLevels lists the tiers in selector order.
var AccessLevels = []AccessLevel{AccessFree, AccessPaid, AccessPrivate}

// ValidAccessLevel reports whether l is one of the known tiers.
func ValidAccessLevel(l AccessLevel) bool {
	switch l {
	case AccessFree, AccessPaid, AccessPrivate:
		return true
	}
	return false
}

// Restrictiveness orders tiers: free < paid < private. Unknown tiers rank
// above private so they are never treated as more permissive than a known one.
func (l AccessLevel) Restrictiveness() int {
	switch l {
	case AccessFree:
		return 0
	case AccessPaid:
		return 1
	case AccessPrivate:
		return 2
	}
	return 3
}

// Feed is a named grouping of indicators with an access tier.
type Feed struct {
	Name           string      `json:"name"`
	IndicatorCount int         `json:"count"`
	AccessLevel    AccessLevel `json:"access_level,omitempty"`
}

// Normalize fills the default tier when the backend omitted it and clamps a
// negative count. A tier the console does not recognise is kept verbatim.
func (f Feed) Normalize() Feed {
	if f.AccessLevel == "" {
		f.AccessLevel = DefaultAccessLevel
	}
	if f.IndicatorCount < 0 {
		f.IndicatorCount = 0
	}
	return f
}

// Path is the distribution path consumers use to pull this feed.
func (f Feed) Path() string {
	return "/feeds/" + url.PathEscape(f.Name)
}

// Endpoint is a protocol endpoint that serves every non-private feed.
type Endpoint struct {
	Name string
	Path string
}

// IntegrationEndpoints are the multi-format distribution routes of the platform.
var IntegrationEndpoints = []Endpoint{
	{Name: "TAXII 2.1", Path: "/taxii2/api1/collections/"},
	{Name: "MISP", Path: "/misp/events"},
	{Name: "STIX 2.1 bundle", Path: "/stix/bundle"},
}
