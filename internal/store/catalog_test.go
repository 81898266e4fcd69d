package store

import (
	"context"
	"testing"

	"github.com/rx3lixir/cepic-app/internal/validate"
)

func TestGalleryLightboxWraps(t *testing.T) {
	g := NewGalleryStore(&fakeCatalog{})
	if err := g.Fetch(context.Background(), ""); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	g.Next()
	if g.State().Lightbox != -1 {
		t.Fatalf("Next() moved a closed lightbox")
	}

	g.Open(2)
	g.Next()
	if got := g.State().Lightbox; got != 0 {
		t.Fatalf("lightbox = %d, want 0", got)
	}
	g.Prev()
	if got := g.State().Lightbox; got != 2 {
		t.Fatalf("lightbox = %d, want 2", got)
	}

	g.Open(10)
	if got := g.State().Lightbox; got != 2 {
		t.Fatalf("out of range Open changed lightbox to %d", got)
	}
	g.CloseLightbox()
	if g.State().Lightbox != -1 {
		t.Fatalf("lightbox not closed")
	}
}

func TestCategorySelectLoadsTrainings(t *testing.T) {
	c := NewCategoryStore(&fakeCatalog{})
	ctx := context.Background()

	if err := c.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if err := c.Select(ctx, "c2"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, ok := c.Training("t-c2"); !ok {
		t.Fatalf("training of selected category not loaded: %+v", c.State().Trainings)
	}
}

func TestContactValidatesBeforeSending(t *testing.T) {
	api := &fakeCatalog{}
	s := NewContactStore(api, nil)
	ctx := context.Background()

	if err := s.Submit(ctx, validate.ContactForm{Name: "Awa"}); err == nil {
		t.Fatalf("incomplete form accepted")
	}
	if len(api.contacts) != 0 {
		t.Fatalf("invalid form sent")
	}

	form := validate.ContactForm{Name: "Awa", Email: "awa@example.com", Subject: "Hello", Message: "I would like more details"}
	if err := s.Submit(ctx, form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !s.State().Sent || len(api.contacts) != 1 {
		t.Fatalf("message not sent")
	}
	s.Reset()
	if s.State().Sent {
		t.Fatalf("Reset() kept Sent flag")
	}
}
