package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInputNotFound is returned by ReadURLs when the input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ReadURLs reads one search URL per line, trimming whitespace and skipping blank lines.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("input: open %q: %w", path, err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("input: read %q: %w", path, err)
	}
	return urls, nil
}
