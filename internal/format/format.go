package format

import (
	"fmt"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// BitRate formats a bit rate in bits/sec for human display.
// Bit rates use decimal units. Examples: "128 kb/s", "1.4 Mb/s".
func BitRate(bps int) string {
	const (
		kb = 1000
		mb = 1000 * kb
	)
	switch {
	case bps >= mb:
		return fmt.Sprintf("%.1f Mb/s", float64(bps)/float64(mb))
	case bps >= kb:
		return fmt.Sprintf("%d kb/s", bps/kb)
	default:
		return fmt.Sprintf("%d b/s", bps)
	}
}

// Size formats a size in bytes for human display.
// Uses MB for sizes >= 1MB, KB otherwise.
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	if bytes >= mb {
		return fmt.Sprintf("%d MB", bytes/mb)
	}
	if bytes >= kb {
		return fmt.Sprintf("%d KB", bytes/kb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
