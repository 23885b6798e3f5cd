package download_prompt

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	KB uint64 = 1024
	MB        = KB * 1024
	GB        = MB * 1024
	TB        = GB * 1024
)

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b uint64) string {
	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

var byteSuffixes = []struct {
	suffix     string
	multiplier uint64
}{
	{"TB", TB},
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"B", 1},
}

// ParseBytes parses a human-readable byte string such as "256MB" or "1.5 GB".
func ParseBytes(s string) (uint64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	multiplier := uint64(1)
	for _, b := range byteSuffixes {
		if strings.HasSuffix(s, b.suffix) {
			multiplier = b.multiplier
			s = strings.TrimSpace(strings.TrimSuffix(s, b.suffix))
			break
		}
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte string: %q", s)
	}
	return uint64(value * float64(multiplier)), nil
}
