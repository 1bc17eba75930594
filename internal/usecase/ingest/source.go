package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const downloadTimeout = 30 * time.Second

// maxSourceBytes bounds a downloaded hotel.json.
const maxSourceBytes = 64 << 20

// Source locates hotel.json on disk, downloading it from URL when the file is absent.
type Source struct {
	Path   string
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

// Read returns the decoded records.
func (s Source) Read(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		s.logger().Info("using local hotel file", zap.String("path", s.Path))
	case errors.Is(err, fs.ErrNotExist) && s.URL != "":
		s.logger().Info("hotel file missing, downloading", zap.String("url", s.URL))
		if data, err = s.download(ctx); err != nil {
			return nil, err
		}
		if err := s.save(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return Decode(data)
}

func (s Source) download(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download hotels: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download hotels: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return data, nil
}

// save keeps the download so later runs read it locally. Bytes are validated before writing.
func (s Source) save(data []byte) error {
	if _, err := Decode(data); err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	return nil
}

func (s Source) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
