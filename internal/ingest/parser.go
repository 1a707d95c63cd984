package ingest

import (
	"strings"

	"kinodex/internal/models"
	"kinodex/internal/utils"
)

// ParseLine parses one line of bulk input in the shape
// "<Title tokens...> <Quality> <URL>". The last token must look like a
// URL and the one before it must be a quality label; everything before
// them joins to form the title. A line that doesn't fit the shape is
// rejected, never guessed at.
func ParseLine(line string) (*models.IngestLine, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return nil, false
	}

	link := tokens[len(tokens)-1]
	quality := tokens[len(tokens)-2]
	if !strings.HasPrefix(link, "http") {
		return nil, false
	}
	if !utils.IsQualityToken(quality) {
		return nil, false
	}

	return &models.IngestLine{
		Title:   strings.Join(tokens[:len(tokens)-2], " "),
		Quality: quality,
		Link:    link,
	}, true
}
