package models

import "time"

// MetaField names the reserved metadata sub-object inside an entry.
// Consumers that enumerate qualities must never treat it as a quality label.
const MetaField = "meta"

// Entry represents one catalog title: its quality/link map plus metadata
type Entry struct {
	Key       string            `boltholdKey:"Key"`
	Title     string            // display title, case preserved
	Qualities map[string]string // quality label (e.g. "720p") -> download URL
	Seasons   map[string]Season // season sub-entries, keyed "S01", "S02", ...
	Meta      Meta
}

// Meta holds best-effort enrichment data for an entry
type Meta struct {
	Poster    string
	Year      string
	TMDBID    int
	IsSeries  bool
	DateAdded int64 // unix timestamp, stamped on first write only
}

// Season holds per-season metadata inside a series entry
type Season struct {
	Poster string
}

// HasQuality reports whether the entry already holds a link for quality
func (e *Entry) HasQuality(quality string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Qualities[quality]
	return ok
}

// QualityLabels returns the entry's quality labels in map order; callers
// that render sort themselves.
func (e *Entry) QualityLabels() []string {
	labels := make([]string, 0, len(e.Qualities))
	for q := range e.Qualities {
		labels = append(labels, q)
	}
	return labels
}

// Stamp sets DateAdded if it has not been set yet
func (e *Entry) Stamp(now time.Time) {
	if e.Meta.DateAdded == 0 {
		e.Meta.DateAdded = now.Unix()
	}
}
