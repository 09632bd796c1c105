package matcher

import "strings"

// Item name markers of the categories that are traded in bulk.
const (
	StickerMarker    = "印花"
	WeaponCaseMarker = "武器箱"
	GraffitiMarker   = "封装的涂鸦"
)

// DefaultBulkMarkers is the marker set used when none is configured.
var DefaultBulkMarkers = []string{StickerMarker, WeaponCaseMarker, GraffitiMarker}

// isBulk reports whether itemName contains any of markers.
func isBulk(itemName string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(itemName, marker) {
			return true
		}
	}
	return false
}
