package domain

// IndicatorType is the kind of value an indicator carries.
type IndicatorType string

// Indicator types accepted by the platform.
const (
	IndicatorDomain IndicatorType = "domain"
	IndicatorIP     IndicatorType = "ip"
	IndicatorURL    IndicatorType = "url"
	IndicatorHash   IndicatorType = "hash"
	IndicatorEmail  IndicatorType = "email"
)

// IndicatorTypes lists every indicator type in form order.
var IndicatorTypes = []IndicatorType{
	IndicatorDomain,
	IndicatorIP,
	IndicatorURL,
	IndicatorHash,
	IndicatorEmail,
}

// ValidIndicatorType reports whether t is a known indicator type.
func ValidIndicatorType(t IndicatorType) bool {
	for _, v := range IndicatorTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Indicator is a single IOC as listed by the backend.
// Identity for deletion is the (Value, Feed) pair.
type Indicator struct {
	Value       string        `json:"value"`
	Type        IndicatorType `json:"type"`
	Feed        string        `json:"feed,omitempty"`
	StixID      string        `json:"stix_id,omitempty"`
	MISPEventID string        `json:"misp_event_id,omitempty"`
}

// Deletable reports whether the indicator carries the feed qualifier the
// delete route needs.
func (i Indicator) Deletable() bool {
	return i.Feed != ""
}

// DefaultCategory is preselected when creating an indicator.
const DefaultCategory = "Malware"

// Categories are the indicator categories offered when creating an IOC.
var Categories = []string{
	"Malware",
	"Phishing",
	"C2",
	"Scanning",
}

// HashTypes are the digest kinds the backend accepts for hash indicators.
var HashTypes = []string{"md5", "sha1", "sha256"}
