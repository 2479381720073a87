package counters

import (
	"context"
	"errors"
	"testing"
)

func TestStore_NotConfigured(t *testing.T) {
	s := NewStore(nil, 0)
	slugs := []string{"first", "second"}

	reads := map[string]func() error{
		"views":       func() error { _, err := s.Views(context.Background(), slugs); return err },
		"views24h":    func() error { _, err := s.Views24h(context.Background(), slugs); return err },
		"viewsRange":  func() error { _, err := s.ViewsRange(context.Background(), slugs, 7); return err },
		"shares":      func() error { _, err := s.Shares(context.Background(), slugs); return err },
		"shares24h":   func() error { _, err := s.Shares24h(context.Background(), slugs); return err },
		"comments":    func() error { _, err := s.Comments(context.Background(), slugs); return err },
		"comments24h": func() error { _, err := s.Comments24h(context.Background(), slugs); return err },
		"trending":    func() error { _, err := s.Trending(context.Background()); return err },
		"vercel":      func() error { _, _, err := s.VercelMetrics(context.Background()); return err },
	}
	for name, read := range reads {
		if err := read(); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("%s: expected ErrUnavailable without a client, got %v", name, err)
		}
	}

	if err := s.RequestRefresh(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RequestRefresh: expected ErrUnavailable, got %v", err)
	}
}

func TestStore_DefaultTimeout(t *testing.T) {
	if s := NewStore(nil, 0); s.timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %v", s.timeout)
	}
	if s := NewStore(nil, defaultTimeout*2); s.timeout != defaultTimeout*2 {
		t.Fatalf("expected explicit timeout to stick, got %v", s.timeout)
	}
}
