package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// Extractor runs text recognition over a local image file.  It is an
// interface so the attendance pipeline can be exercised in tests without a
// tesseract installation.
type Extractor interface {
	Extract(ctx context.Context, imagePath string) (string, error)
}

// TesseractExtractor recognises text with the system tesseract engine using
// the fixed English model.
type TesseractExtractor struct{}

func NewTesseractExtractor() *TesseractExtractor { return &TesseractExtractor{} }

// Extract returns the best-effort recognised plain text of the image.  A
// failure here is opaque; callers treat it as "no names detected" rather than
// a hard error.
func (e *TesseractExtractor) Extract(ctx context.Context, imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", err
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", err
	}
	return client.Text()
}
