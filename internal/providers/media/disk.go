package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	RootDir string
}

// DiskProvider writes files under a flat root directory. The returned
// file URL is the path relative to the root.
type DiskProvider struct {
	cfg Config
}

func NewDisk(cfg Config) *DiskProvider {
	return &DiskProvider{cfg: cfg}
}

func (p *DiskProvider) Save(ctx context.Context, name string, data []byte) (string, error) {
	rel := sanitize(name)
	if rel == "" {
		return "", fmt.Errorf("media: empty file name")
	}

	full := filepath.Join(p.cfg.RootDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("media: create dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", rel, err)
	}
	return rel, nil
}

func (p *DiskProvider) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	rel := sanitize(fileURL)
	if rel == "" {
		return nil, fmt.Errorf("media: empty file url")
	}

	data, err := os.ReadFile(filepath.Join(p.cfg.RootDir, rel))
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", rel, err)
	}
	return data, nil
}

// sanitize keeps stored paths inside the root directory.
func sanitize(name string) string {
	cleaned := filepath.ToSlash(filepath.Clean("/" + name))
	return strings.TrimPrefix(cleaned, "/")
}
