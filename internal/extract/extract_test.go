package extract_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tbdc/leadscope/internal/extract"
)

func TestText(t *testing.T) {
	t.Run("plain text passthrough", func(t *testing.T) {
		got, err := extract.Text("notes.txt", []byte("Acme builds robots."))
		if err != nil {
			t.Fatalf("Text error: %v", err)
		}
		if got != "Acme builds robots." {
			t.Errorf("Text = %q", got)
		}
	})

	t.Run("markdown and csv supported", func(t *testing.T) {
		for _, name := range []string{"pitch.md", "customers.csv", "payload.json"} {
			if _, err := extract.Text(name, []byte("content")); err != nil {
				t.Errorf("Text(%q) error: %v", name, err)
			}
		}
	})

	t.Run("extension is case insensitive", func(t *testing.T) {
		if _, err := extract.Text("NOTES.TXT", []byte("content")); err != nil {
			t.Errorf("Text error: %v", err)
		}
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		got, err := extract.Text("notes.txt", []byte("line one\n\n\tline   two"))
		if err != nil {
			t.Fatalf("Text error: %v", err)
		}
		if got != "line one line two" {
			t.Errorf("Text = %q", got)
		}
	})

	t.Run("long document truncated", func(t *testing.T) {
		data := []byte(strings.Repeat("word ", 10000))
		got, err := extract.Text("big.txt", data)
		if err != nil {
			t.Fatalf("Text error: %v", err)
		}
		if len(got) > extract.MaxDocumentChars {
			t.Errorf("len = %d, want <= %d", len(got), extract.MaxDocumentChars)
		}
	})

	t.Run("unsupported formats rejected", func(t *testing.T) {
		for _, name := range []string{"deck.pptx", "sheet.xlsx", "image.png", "archive.zip", "noext"} {
			if _, err := extract.Text(name, []byte("data")); !errors.Is(err, extract.ErrUnsupported) {
				t.Errorf("Text(%q) error = %v, want ErrUnsupported", name, err)
			}
		}
	})

	t.Run("corrupt pdf reports error", func(t *testing.T) {
		_, err := extract.Text("broken.pdf", []byte("not a pdf"))
		if err == nil {
			t.Error("Text accepted corrupt pdf")
		}
		if errors.Is(err, extract.ErrUnsupported) {
			t.Error("corrupt pdf reported as unsupported")
		}
	})
}
