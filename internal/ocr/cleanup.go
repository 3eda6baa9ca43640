package ocr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SweepScratch deletes images in dir older than maxAge.  Downloaded images
// are normally removed as soon as they are processed; the sweep catches
// leftovers from crashed handlers.
func SweepScratch(dir string, maxAge time.Duration, log *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error("read scratch dir", "dir", dir, "error", err)
		}
		return
	}
	now := time.Now()
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				log.Error("remove stale image", "file", entry.Name(), "error", err)
			}
		}
	}
}

// RunCleanup sweeps the scratch directory on a fixed interval until ctx is
// cancelled.  Fully decoupled from request handling.
func RunCleanup(ctx context.Context, dir string, interval, maxAge time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepScratch(dir, maxAge, log)
		}
	}
}
