// Package ocr implements the attendance pipeline: download a roster
// screenshot, run text recognition over it, filter plausible names out of the
// raw text, and match them against the guild's member list.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Download failure classes.  Callers distinguish them for logging only; every
// class aborts the image the same way.
var (
	ErrDownloadTimeout = errors.New("download timed out")
	ErrBadStatus       = errors.New("unexpected response status")
)

// Fetcher downloads remote attachments to local scratch storage.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a bounded per-download timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch streams the body of url into dest.  It returns once the file is fully
// written.  There is no retry; on failure the partial file is removed before
// returning.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return fmt.Errorf("%w: %s", ErrDownloadTimeout, url)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return fmt.Errorf("%w: %s", ErrDownloadTimeout, url)
		}
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
