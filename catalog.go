package download_prompt

import (
	"context"
	"fmt"
)

type DirectoryType int

const (
	// DirectoryDefault is the primary download directory on internal storage.
	DirectoryDefault DirectoryType = iota
	// DirectoryAdditional is a download directory on removable or secondary storage.
	DirectoryAdditional
	DirectoryOther
)

func (t DirectoryType) String() string {
	switch t {
	case DirectoryDefault:
		return "default"
	case DirectoryAdditional:
		return "additional"
	case DirectoryOther:
		return "other"
	default:
		return fmt.Sprintf("DirectoryType(%d)", int(t))
	}
}

// DirectoryOption is one candidate save directory.
type DirectoryOption struct {
	Name           string
	Location       string
	AvailableSpace uint64
	TotalSpace     uint64
	Type           DirectoryType
}

type DirectoryCatalog interface {
	Directories(ctx context.Context) ([]DirectoryOption, error)
}

// StaticCatalog is a DirectoryCatalog with a fixed list of directories.
type StaticCatalog []DirectoryOption

func (c StaticCatalog) Directories(_ context.Context) ([]DirectoryOption, error) {
	return append([]DirectoryOption(nil), c...), nil
}
