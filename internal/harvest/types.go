// Package harvest defines the cross-reference email harvesting core: the
// discovered-URL lifecycle engine, the email extractor, and the ports it
// depends on.
package harvest

import "time"

// URLType identifies which discovery strategy applies to a URL.
type URLType string

// URL type values assigned by the upstream discovery stages.
const (
	URLTypeWebsite       URLType = "WEBSITE"
	URLTypeSocialProfile URLType = "SOCIAL_PROFILE"
)

// URLStatus represents the lifecycle state of a discovered URL.
type URLStatus string

// Status values persisted in the store. Transitions within one attempt are
// monotonic: NEW -> PROCESSING -> DONE|FAILED.
const (
	StatusNew        URLStatus = "NEW"
	StatusProcessing URLStatus = "PROCESSING"
	StatusDone       URLStatus = "DONE"
	StatusFailed     URLStatus = "FAILED"
)

// DiscoveredURL is a candidate link surfaced by an earlier pipeline stage,
// pending inspection for contact emails. Rows are created upstream; this
// engine only mutates their status.
type DiscoveredURL struct {
	ID        int64     `json:"id" db:"id"`
	PlaceID   string    `json:"place_id" db:"place_id"`
	URL       string    `json:"url" db:"url"`
	Type      URLType   `json:"url_type" db:"url_type"`
	Status    URLStatus `json:"status" db:"status"`
	UpdatedAt int64     `json:"updated_at" db:"updated_at"`
}

// EmailRecord is an extracted contact email owned by a place. Uniqueness per
// (place, email) is enforced by the store, not the caller.
type EmailRecord struct {
	PlaceID string `json:"place_id" db:"place_id"`
	Email   string `json:"email" db:"email"`
	Source  string `json:"source" db:"source"`
}

// FetchRequest asks the fetch client for the rendered content of one URL.
// Type selects the navigation policy (About sub-page rewrite, settle delay).
type FetchRequest struct {
	URL  string
	Type URLType
}

// Page is the rendered document returned by the fetch client.
type Page struct {
	URL  string
	HTML string
}

// Outcome is the result of one fetch+extract attempt. A failed fetch and an
// empty extraction both finalize the URL as FAILED, but the reason stays
// inspectable instead of being swallowed by a broad recover.
type Outcome struct {
	Emails []string
	Err    error
}

// Found reports whether the attempt produced at least one email.
func (o Outcome) Found() bool {
	return o.Err == nil && len(o.Emails) > 0
}

// Stats summarizes one engine run. Transient, never persisted.
type Stats struct {
	RunID       string
	Processed   int
	Succeeded   int
	Failed      int
	EmailsSaved int
	Elapsed     time.Duration
}
