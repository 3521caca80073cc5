// Package extract pulls plain text out of CRM attachments for model
// prompts.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Limits on extracted text. Individual documents are truncated so one
// large deck cannot crowd everything else out of the prompt.
const (
	MaxDocumentChars = 15000
	MaxCombinedChars = 30000
)

// ErrUnsupported is returned for file types the extractor cannot read.
var ErrUnsupported = errors.New("unsupported attachment type")

// Text extracts readable text from an attachment. Plain-text formats
// pass through; PDFs go through content stream scanning. The result is
// truncated to MaxDocumentChars.
func Text(filename string, data []byte) (string, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".csv", ".json":
		text = string(data)
	case ".pdf":
		text, err = pdfText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if err != nil {
		return "", err
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) > MaxDocumentChars {
		text = text[:MaxDocumentChars]
	}
	return text, nil
}

var (
	tjRegex      = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*Tj`)
	tjArrayRegex = regexp.MustCompile(`\[((?:\\.|[^\]])*)\]\s*TJ`)
	literalRegex = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

// pdfText scans page content streams for text-showing operators. It
// handles the simple encodings produced by slide and document exporters;
// PDFs with custom font subsetting come out garbled and are dropped by
// length heuristics upstream.
func pdfText(data []byte) (string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		reader, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil || reader == nil {
			continue
		}

		content, err := io.ReadAll(reader)
		if err != nil {
			continue
		}

		stream := string(content)
		for _, match := range tjRegex.FindAllStringSubmatch(stream, -1) {
			b.WriteString(unescape(match[1]))
			b.WriteString(" ")
		}
		for _, array := range tjArrayRegex.FindAllStringSubmatch(stream, -1) {
			for _, match := range literalRegex.FindAllStringSubmatch(array[1], -1) {
				b.WriteString(unescape(match[1]))
			}
			b.WriteString(" ")
		}
	}

	return b.String(), nil
}

var pdfEscapes = strings.NewReplacer(
	`\(`, "(",
	`\)`, ")",
	`\\`, `\`,
	`\n`, "\n",
	`\r`, "",
	`\t`, " ",
)

func unescape(s string) string {
	return pdfEscapes.Replace(s)
}
