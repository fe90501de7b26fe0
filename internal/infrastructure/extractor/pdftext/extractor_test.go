package pdftext

import (
	"context"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	e := New()

	text, err := e.ExtractText(context.Background(), []byte("  Lekárska správa\n"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Lekárska správa" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractRejectsUnsupportedMime(t *testing.T) {
	e := New()

	if _, err := e.ExtractText(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractRejectsEmptyContent(t *testing.T) {
	e := New()

	if _, err := e.ExtractText(context.Background(), nil, "application/pdf"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := New()

	if _, err := e.ExtractText(context.Background(), []byte("not a pdf"), "application/pdf"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractCancelledContext(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ExtractText(ctx, []byte("x"), "text/plain"); err == nil {
		t.Fatal("expected error")
	}
}
