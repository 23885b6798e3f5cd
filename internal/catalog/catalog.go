// Package catalog lists candidate download directories on the local filesystem along with their free space.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/alanbriolat/download-prompt"
)

var (
	ErrNotDirectory = errors.New("not a directory")
	ErrNotWritable  = errors.New("directory not writable")
)

// Entry is a configured candidate directory.
type Entry struct {
	Name string
	Path string
	Type download_prompt.DirectoryType
}

// Catalog is a download_prompt.DirectoryCatalog over local directories. Entries that don't exist or can't be written
// to are left out.
type Catalog struct {
	entries []Entry
	statfs  func(path string) (available, total uint64, err error)
	log     *zap.SugaredLogger
}

var _ download_prompt.DirectoryCatalog = (*Catalog)(nil)

func New(entries ...Entry) *Catalog {
	return &Catalog{
		entries: entries,
		statfs:  statfs,
		log:     zap.S().Named("catalog"),
	}
}

// Directories returns every usable entry. The error, if any, describes the unusable entries; the directories
// returned alongside it are still valid.
func (c *Catalog) Directories(ctx context.Context) ([]download_prompt.DirectoryOption, error) {
	var result error
	dirs := make([]download_prompt.DirectoryOption, 0, len(c.entries))
	for _, entry := range c.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir, err := c.lookup(entry)
		if err != nil {
			c.log.Debugf("skipping %v: %v", entry.Path, err)
			if !errors.Is(err, fs.ErrNotExist) {
				result = multierror.Append(result, err)
			}
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs, result
}

func (c *Catalog) lookup(entry Entry) (download_prompt.DirectoryOption, error) {
	path, err := filepath.Abs(entry.Path)
	if err != nil {
		return download_prompt.DirectoryOption{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return download_prompt.DirectoryOption{}, err
	} else if !info.IsDir() {
		return download_prompt.DirectoryOption{}, fmt.Errorf("%v: %w", path, ErrNotDirectory)
	} else if !writable(path) {
		return download_prompt.DirectoryOption{}, fmt.Errorf("%v: %w", path, ErrNotWritable)
	}
	available, total, err := c.statfs(path)
	if err != nil {
		return download_prompt.DirectoryOption{}, fmt.Errorf("%v: %w", path, err)
	}
	name := entry.Name
	if name == "" {
		name = filepath.Base(path)
	}
	return download_prompt.DirectoryOption{
		Name:           name,
		Location:       path,
		AvailableSpace: available,
		TotalSpace:     total,
		Type:           entry.Type,
	}, nil
}
