// Package suggest decides whether a download should be steered away from the default directory.
package suggest

import (
	"path/filepath"
	"strings"

	"github.com/alanbriolat/download-prompt"
)

// MinFreeFraction is the share of a directory's total space that must remain free after the download for the
// directory to count as a good fit.
const MinFreeFraction = 0.1

// Predicate reports whether the default directory is a poor fit compared to the others.
type Predicate func(defaultDir download_prompt.DirectoryOption, others []download_prompt.DirectoryOption, totalBytes uint64) bool

// Policy evaluates the suggestion rule. The zero value uses DefaultPredicate.
type Policy struct {
	Predicate Predicate
}

// ShouldSuggest returns true only if more than one candidate directory exists and the predicate says the directory
// holding defaultLocation is a poor fit for totalBytes. It has no side effects.
func (p Policy) ShouldSuggest(dirs []download_prompt.DirectoryOption, defaultLocation string, totalBytes uint64) bool {
	if len(dirs) <= 1 || totalBytes == 0 {
		return false
	}
	defaultDir, others, ok := split(dirs, defaultLocation)
	if !ok {
		return false
	}
	predicate := p.Predicate
	if predicate == nil {
		predicate = DefaultPredicate
	}
	return predicate(defaultDir, others, totalBytes)
}

// ShouldSuggest evaluates the default Policy.
func ShouldSuggest(dirs []download_prompt.DirectoryOption, defaultLocation string, totalBytes uint64) bool {
	return Policy{}.ShouldSuggest(dirs, defaultLocation, totalBytes)
}

// DefaultPredicate suggests moving when the default directory would be left with less than MinFreeFraction of its
// space (or cannot hold the file at all) while some other directory would not.
func DefaultPredicate(defaultDir download_prompt.DirectoryOption, others []download_prompt.DirectoryOption, totalBytes uint64) bool {
	if fits(defaultDir, totalBytes) {
		return false
	}
	for _, dir := range others {
		if fits(dir, totalBytes) {
			return true
		}
	}
	return false
}

func fits(dir download_prompt.DirectoryOption, totalBytes uint64) bool {
	if dir.AvailableSpace < totalBytes || dir.TotalSpace == 0 {
		return false
	}
	remaining := float64(dir.AvailableSpace - totalBytes)
	return remaining/float64(dir.TotalSpace) >= MinFreeFraction
}

// split finds the directory containing defaultLocation, preferring the longest (most specific) match.
func split(dirs []download_prompt.DirectoryOption, defaultLocation string) (download_prompt.DirectoryOption, []download_prompt.DirectoryOption, bool) {
	best := -1
	for i, dir := range dirs {
		if contains(dir.Location, defaultLocation) && (best < 0 || len(dir.Location) > len(dirs[best].Location)) {
			best = i
		}
	}
	if best < 0 {
		return download_prompt.DirectoryOption{}, nil, false
	}
	others := make([]download_prompt.DirectoryOption, 0, len(dirs)-1)
	others = append(others, dirs[:best]...)
	others = append(others, dirs[best+1:]...)
	return dirs[best], others, true
}

func contains(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
