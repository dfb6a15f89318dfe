package pagesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileListing serves a directory of pre-rendered listing pages, ordered by
// file name. It is the offline integration used by the CLI and by tests; the
// live rendering surface implements the same Opener contract elsewhere.
type FileListing struct {
	Dir string
}

// Open scans Dir for page files and returns a session on the first one.
func (l *FileListing) Open(ctx context.Context) (Session, error) {
	matches, err := filepath.Glob(filepath.Join(l.Dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("scanning page directory %s: %w", l.Dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no listing pages found in %s", l.Dir)
	}
	sort.Strings(matches)
	return &fileSession{pages: matches}, nil
}

type fileSession struct {
	pages []string
	idx   int
}

func (s *fileSession) Content(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.pages[s.idx])
	if err != nil {
		return "", fmt.Errorf("reading page %s: %w", s.pages[s.idx], err)
	}
	return string(data), nil
}

func (s *fileSession) TriggerNextPage(ctx context.Context) (bool, error) {
	if s.idx+1 >= len(s.pages) {
		return false, nil
	}
	s.idx++
	return true, nil
}

func (s *fileSession) AwaitReady(ctx context.Context) error {
	return ctx.Err()
}

func (s *fileSession) Close() error {
	return nil
}
