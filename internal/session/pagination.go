package session

// Fixed page sizes per listing context.
const (
	// CatalogPageSize is the page size for browsing the full catalog.
	CatalogPageSize = 10
	// ReportPageSize is the page size for the missing-metadata admin report.
	ReportPageSize = 5
)

// Page slices one page out of an ordered key list. Offsets are clamped
// to >= 0; an offset past the end yields an empty page with
// hasNext=false, never an error.
func Page(keys []string, offset, pageSize int) (page []string, hasPrev, hasNext bool) {
	if offset < 0 {
		offset = 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if offset >= len(keys) {
		return []string{}, offset > 0 && len(keys) > 0, false
	}

	end := offset + pageSize
	if end > len(keys) {
		end = len(keys)
	}
	return keys[offset:end], offset > 0, end < len(keys)
}
