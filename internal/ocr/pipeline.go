package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// AttendanceStore is the slice of storage the recorder needs.
type AttendanceStore interface {
	Record(ctx context.Context, guildID, userID, username, date string) error
	IncrementTotal(ctx context.Context, guildID, userID string) error
}

// Result is the outcome of one attendance run.  Unmatched names produced no
// writes; they are reported so callers can surface the misses instead of
// silently losing attendance.
type Result struct {
	Matched   []Match
	Unmatched []string
}

// Pipeline wires fetcher, extractor and store into the attendance flow:
// download each image, recognise text, filter plausible names, match them
// against the member list and upsert counters for the matches.
type Pipeline struct {
	fetcher   *Fetcher
	extractor Extractor
	store     AttendanceStore
	imagesDir string
	log       *slog.Logger
}

func NewPipeline(fetcher *Fetcher, extractor Extractor, store AttendanceStore, imagesDir string, log *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		imagesDir: imagesDir,
		log:       log,
	}
}

// ProcessImages runs the full pipeline over a batch of attachment URLs,
// sequentially, one image at a time.  Names are pooled across images through
// a uniqueness set before matching.  An individual image whose OCR fails
// contributes no names but does not abort the batch; a download failure does
// abort, since the batch was user-supplied and partial results would be
// misleading.
func (p *Pipeline) ProcessImages(ctx context.Context, guildID string, urls []string, members []GuildMember) (Result, error) {
	if err := os.MkdirAll(p.imagesDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create images dir: %w", err)
	}

	var candidates []string
	seen := make(map[string]struct{})
	for _, imageURL := range urls {
		dest := filepath.Join(p.imagesDir, scratchName(imageURL))
		if err := p.fetcher.Fetch(ctx, imageURL, dest); err != nil {
			return Result{}, err
		}

		text, err := p.extractor.Extract(ctx, dest)
		os.Remove(dest)
		if err != nil {
			// Treated as "no names in this image", per the pipeline contract.
			p.log.Warn("ocr failed", "image", imageURL, "error", err)
			continue
		}
		for _, name := range FilterNames(text) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			candidates = append(candidates, name)
		}
	}

	matched, unmatched := MatchMembers(candidates, members)
	for _, name := range unmatched {
		p.log.Info("no member found for ocr name", "guild", guildID, "name", name)
	}

	date := time.Now().UTC().Format("2006-01-02")
	for _, m := range matched {
		if err := p.store.Record(ctx, guildID, m.UserID, m.DisplayName, date); err != nil {
			return Result{}, fmt.Errorf("record attendance for %s: %w", m.UserID, err)
		}
		if err := p.store.IncrementTotal(ctx, guildID, m.UserID); err != nil {
			return Result{}, fmt.Errorf("increment total for %s: %w", m.UserID, err)
		}
	}

	return Result{Matched: matched, Unmatched: unmatched}, nil
}

// scratchName derives a unique local filename from an attachment URL.
// Discord CDN links carry signed query parameters that must not leak into
// the on-disk name, so only the path's base is kept.
func scratchName(rawURL string) string {
	base := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		base = u.Path
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(base))
}
