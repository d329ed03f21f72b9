package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Extractor turns image bytes into text. Implementations may shell out or
// call a remote service; a failure aborts the current message's pipeline
// and is never retried.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// TesseractExtractor runs the tesseract binary over stdin/stdout.
type TesseractExtractor struct {
	Binary string
	Lang   string
}

// NewTesseractExtractor returns an extractor with the default binary name
// and English language data.
func NewTesseractExtractor() *TesseractExtractor {
	return &TesseractExtractor{Binary: "tesseract", Lang: "eng"}
}

func (t *TesseractExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.Binary, "stdin", "stdout", "-l", t.Lang)
	cmd.Stdin = bytes.NewReader(image)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, errOut.String())
	}
	return out.String(), nil
}
