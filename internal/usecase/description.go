package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
)

// itemMeta is the product metadata carried in a list item's free-text
// description field, since the host's todo items have no structured fields
// beyond summary/description/status.
type itemMeta struct {
	Brand   string
	Barcode string
	Source  domain.ProductSource
	Count   int
	Total   int
}

// formatDescription serializes item metadata in the "Key: Value | ..." shape
// the card has always written, so lists written by older card versions stay
// readable.
func formatDescription(meta itemMeta) string {
	var parts []string

	if meta.Brand != "" {
		parts = append(parts, fmt.Sprintf("Brand: %s", meta.Brand))
	}
	if meta.Barcode != "" {
		parts = append(parts, fmt.Sprintf("Barcode: %s", meta.Barcode))
	}
	if meta.Source != "" {
		parts = append(parts, fmt.Sprintf("Source: %s", meta.Source))
	}
	if meta.Count > 0 {
		parts = append(parts, fmt.Sprintf("Count: %d", meta.Count))
	}
	if meta.Total > 0 {
		parts = append(parts, fmt.Sprintf("Total: %d", meta.Total))
	}

	return strings.Join(parts, " | ")
}

// parseDescription reads metadata back out of a description. Unknown segments
// are ignored; missing counters default to 1 so hand-written items still rank.
func parseDescription(description string) itemMeta {
	meta := itemMeta{Count: 1, Total: 1}
	if strings.TrimSpace(description) == "" {
		return meta
	}

	for _, part := range strings.Split(description, "|") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "brand":
			meta.Brand = value
		case "barcode":
			meta.Barcode = value
		case "source":
			meta.Source = domain.ProductSource(value)
		case "count":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				meta.Count = n
			}
		case "total":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				meta.Total = n
			}
		}
	}

	return meta
}
