package suggest

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/download-prompt"
)

const (
	mb = download_prompt.MB
	gb = download_prompt.GB
)

func dir(location string, available, total uint64) download_prompt.DirectoryOption {
	return download_prompt.DirectoryOption{Name: location, Location: location, AvailableSpace: available, TotalSpace: total}
}

func TestShouldSuggest(t *testing.T) {
	tests := []struct {
		name       string
		dirs       []download_prompt.DirectoryOption
		defaultDir string
		totalBytes uint64
		expected   bool
	}{
		{
			name:       "single directory never suggests",
			dirs:       []download_prompt.DirectoryOption{dir("/internal/Download", 10*mb, 32*gb)},
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   false,
		},
		{
			name:       "no directories",
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   false,
		},
		{
			name: "default has plenty of space",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 20*gb, 32*gb),
				dir("/sdcard/Download", 60*gb, 64*gb),
			},
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   false,
		},
		{
			name: "default nearly full, sd card has room",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 3*gb, 32*gb),
				dir("/sdcard/Download", 60*gb, 64*gb),
			},
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   true,
		},
		{
			name: "default cannot hold the file",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 100*mb, 32*gb),
				dir("/sdcard/Download", 60*gb, 64*gb),
			},
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   true,
		},
		{
			name: "everything is full",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 100*mb, 32*gb),
				dir("/sdcard/Download", 200*mb, 64*gb),
			},
			defaultDir: "/internal/Download",
			totalBytes: 500 * mb,
			expected:   false,
		},
		{
			name: "default path is a subdirectory of a candidate",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal", 1*gb, 32*gb),
				dir("/sdcard", 60*gb, 64*gb),
			},
			defaultDir: "/internal/Download/Videos",
			totalBytes: 500 * mb,
			expected:   true,
		},
		{
			name: "default directory not among candidates",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 1*gb, 32*gb),
				dir("/sdcard/Download", 60*gb, 64*gb),
			},
			defaultDir: "/elsewhere",
			totalBytes: 500 * mb,
			expected:   false,
		},
		{
			name: "unknown size",
			dirs: []download_prompt.DirectoryOption{
				dir("/internal/Download", 1*mb, 32*gb),
				dir("/sdcard/Download", 60*gb, 64*gb),
			},
			defaultDir: "/internal/Download",
			totalBytes: 0,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert_.Equal(t, tt.expected, ShouldSuggest(tt.dirs, tt.defaultDir, tt.totalBytes))
		})
	}
}

func TestPolicy_CustomPredicate(t *testing.T) {
	assert := assert_.New(t)

	var seenDefault download_prompt.DirectoryOption
	var seenOthers int
	p := Policy{Predicate: func(d download_prompt.DirectoryOption, others []download_prompt.DirectoryOption, _ uint64) bool {
		seenDefault = d
		seenOthers = len(others)
		return true
	}}
	dirs := []download_prompt.DirectoryOption{
		dir("/a", 1, 1),
		dir("/b", 1, 1),
		dir("/c", 1, 1),
	}
	assert.True(p.ShouldSuggest(dirs, "/b/file.bin", 10))
	assert.Equal("/b", seenDefault.Location)
	assert.Equal(2, seenOthers)

	// Evaluating does not reorder or modify the input
	assert.Equal("/a", dirs[0].Location)
	assert.Equal("/b", dirs[1].Location)
}
