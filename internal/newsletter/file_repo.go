package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type fileDocument struct {
	Subscribers []Subscriber `json:"subscribers"`
	LastUpdated *time.Time   `json:"lastUpdated,omitempty"`
}

// FileRepository keeps subscribers in a single JSON document on disk.
// Writes are serialised by a mutex and replace the file atomically.
type FileRepository struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileRepository(path string) (*FileRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("newsletter file path required")
	}
	return &FileRepository{path: path, now: time.Now}, nil
}

func (r *FileRepository) Add(ctx context.Context, sub Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	for _, existing := range doc.Subscribers {
		if strings.EqualFold(existing.Email, sub.Email) {
			return ErrDuplicate
		}
	}
	doc.Subscribers = append(doc.Subscribers, sub)
	updated := r.now().UTC()
	doc.LastUpdated = &updated
	return r.write(doc)
}

func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return 0, err
	}
	return int64(len(doc.Subscribers)), nil
}

// read loads the document, creating an empty one on first use.
func (r *FileRepository) read() (fileDocument, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := fileDocument{Subscribers: []Subscriber{}}
		return doc, r.write(doc)
	}
	if err != nil {
		return fileDocument{}, fmt.Errorf("read newsletter file: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("decode newsletter file: %w", err)
	}
	if doc.Subscribers == nil {
		doc.Subscribers = []Subscriber{}
	}
	return doc, nil
}

func (r *FileRepository) write(doc fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create newsletter dir: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode newsletter file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".newsletter-*.json")
	if err != nil {
		return fmt.Errorf("create temp newsletter file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write newsletter file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close newsletter file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace newsletter file: %w", err)
	}
	return nil
}
