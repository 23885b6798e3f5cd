// Package util has small helpers shared by the command-line front end.
package util

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var (
	ErrNoFilename = errors.New("cannot extract valid filename")
)

// FilenameFromURL returns the last path element of rawURL, unescaped, for use as a download file name.
func FilenameFromURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	p := strings.Trim(parsedURL.Path, "/")
	if p == "" {
		return "", ErrNoFilename
	}
	filename := path.Base(p)
	// Don't allow "filenames" that are just ".", "..", etc.
	if strings.Trim(filename, ".") == "" || strings.Contains(filename, `\`) {
		return "", ErrNoFilename
	}
	return filename, nil
}
