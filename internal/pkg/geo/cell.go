// Package geo names the coarse location cells used as broadcast rooms.
package geo

import (
	"fmt"
	"math"
)

// Cell returns the broadcast room name for a coordinate pair. Coordinates
// are rounded to the nearest integer degree so that independent senders and
// receivers derive the same name for nearby points.
func Cell(lat, lng float64) string {
	return fmt.Sprintf("location-%d-%d", int(math.Round(lat)), int(math.Round(lng)))
}
