package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRepository hosts ONNX exports of the PaddleOCR models.
const DefaultRepository = "https://huggingface.co/monkt/paddleocr-onnx/resolve/main"

// Downloader fetches model files with retries.
type Downloader struct {
	Repository string
	Client     *http.Client
	MaxRetries uint64
	// InitialInterval is the first retry delay; it grows exponentially.
	InitialInterval time.Duration
}

// NewDownloader uses repository, or DefaultRepository when empty.
func NewDownloader(repository string) *Downloader {
	if repository == "" {
		repository = DefaultRepository
	}
	return &Downloader{
		Repository:      strings.TrimRight(repository, "/"),
		Client:          &http.Client{Timeout: 10 * time.Minute},
		MaxRetries:      4,
		InitialInterval: time.Second,
	}
}

// URLFor is the download URL of m.
func (d *Downloader) URLFor(m ModelInfo) string {
	return d.Repository + "/" + strings.TrimLeft(m.RemotePath, "/")
}

// Download fetches m into modelsDir unless it is already present (and
// force is false). It returns the local path.
func (d *Downloader) Download(ctx context.Context, modelsDir string, m ModelInfo, force bool) (string, error) {
	dest := PathFor(modelsDir, m)
	if !force {
		if _, err := os.Stat(dest); err == nil {
			slog.Info("Model already present", "model", m.Name, "path", dest)
			return dest, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	url := d.URLFor(m)
	attempt := 0
	op := func() error {
		attempt++
		slog.Info("Downloading model", "model", m.Name, "url", url, "attempt", attempt)
		return d.fetch(ctx, url, dest)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.InitialInterval
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, d.MaxRetries), ctx)); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", m.Name, err)
	}
	return dest, nil
}

// ErrHTTPStatus wraps non-2xx download responses.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// fetch streams url into dest through a temporary file. Client errors are
// permanent; server and network errors are retried.
func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return backoff.Permanent(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return backoff.Permanent(err)
	}
	slog.Info("Model saved", "path", dest, "bytes", n)
	return nil
}
