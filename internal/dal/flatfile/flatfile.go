package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Client represents the directory holding the table files.
type Client struct {
	dir string
}

// MustNewClient creates the storage directory if needed.
func MustNewClient(dir string) *Client {
	c, err := NewClient(dir)
	if err != nil {
		panic(err)
	}

	return c
}

// NewClient creates the storage directory if needed.
func NewClient(dir string) (*Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Client{dir: dir}, nil
}

// Dir returns the storage directory.
func (c *Client) Dir() string {
	return c.dir
}

// Store returns the store for the named table file.
func (c *Client) Store(name string) *Store {
	return &Store{path: filepath.Join(c.dir, name)}
}

// Store is a single line-oriented table file.
type Store struct {
	path string
}

// NewStore returns a store for an explicit file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the table file path.
func (s *Store) Path() string {
	return s.path
}

// ReadLines returns every non-empty line of the table.
// A missing file is an empty table.
func (s *Store) ReadLines() ([]string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}

	return lines, nil
}

// WriteLines rewrites the whole table.
// The content goes to a temporary file which is then renamed over the table,
// so readers never observe a partially written file.
func (s *Store) WriteLines(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary table file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return cleanup(tmp, tmpName, fmt.Errorf("failed to write temporary table file: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return cleanup(tmp, tmpName, fmt.Errorf("failed to flush temporary table file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(tmp, tmpName, fmt.Errorf("failed to sync temporary table file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to close temporary table file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to rename table file: %w", err)
	}

	return nil
}

func cleanup(f *os.File, name string, err error) error {
	_ = f.Close()
	_ = os.Remove(name)

	return err
}
