package pasteboard

import (
	"context"
	"errors"
	"testing"

	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/logger"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubRecognizer struct {
	texts       []string
	valueCalls  int
	snapshot    *patterns.Snapshot
	patternsErr error
}

func (s *stubRecognizer) Patterns(ctx context.Context, text string, keys []patterns.Key) ([]patterns.Key, error) {
	s.texts = append(s.texts, text)
	if s.patternsErr != nil {
		return nil, s.patternsErr
	}
	present := map[patterns.Key]bool{}
	for _, k := range s.snapshot.Keys() {
		present[k] = true
	}
	var found []patterns.Key
	for _, k := range keys {
		if present[k] {
			found = append(found, k)
		}
	}
	return found, nil
}

func (s *stubRecognizer) Values(ctx context.Context, text string, keys []patterns.Key) (*patterns.Snapshot, error) {
	s.texts = append(s.texts, text)
	s.valueCalls++
	return s.snapshot, nil
}

type failingReader struct{ err error }

func (f failingReader) ReadText() (string, error) { return "", f.err }

func TestPasteboardHasText(t *testing.T) {
	ctx := context.Background()
	rec := &stubRecognizer{snapshot: &patterns.Snapshot{}}

	cases := []struct {
		name   string
		reader TextReader
		want   bool
	}{
		{"Text", StaticText("hello"), true},
		{"Empty", StaticText(""), false},
		{"Whitespace", StaticText("  \n"), false},
		{"ReadError", failingReader{err: errors.New("no display")}, false},
		{"Unsupported", failingReader{err: detector.ErrSourceUnavailable}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pb := New(tc.reader, rec, logger.Nop())
			if got := pb.HasText(ctx); got != tc.want {
				t.Errorf("HasText() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestPasteboardQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesClipboardText", func(t *testing.T) {
		rec := &stubRecognizer{snapshot: &patterns.Snapshot{ProbableWebSearch: "hello"}}
		pb := New(StaticText("hello"), rec, nil)

		keys, err := pb.Patterns(ctx, []patterns.Key{patterns.ProbableWebSearch.Key(), patterns.Links.Key()})
		if err != nil {
			t.Fatalf("Patterns failed: %v", err)
		}
		if len(keys) != 1 || keys[0] != patterns.ProbableWebSearch.Key() {
			t.Errorf("Unexpected keys: %v", keys)
		}
		if len(rec.texts) != 1 || rec.texts[0] != "hello" {
			t.Errorf("Recognizer got texts %v", rec.texts)
		}
	})

	t.Run("MissingTextIsUnavailable", func(t *testing.T) {
		rec := &stubRecognizer{snapshot: &patterns.Snapshot{}}
		pb := New(failingReader{err: errors.New("xclip missing")}, rec, nil)

		if _, err := pb.Patterns(ctx, nil); !errors.Is(err, detector.ErrSourceUnavailable) {
			t.Errorf("Expected ErrSourceUnavailable, got %v", err)
		}
		if _, err := pb.Values(ctx, nil); !errors.Is(err, detector.ErrSourceUnavailable) {
			t.Errorf("Expected ErrSourceUnavailable, got %v", err)
		}
		if len(rec.texts) != 0 {
			t.Error("Recognizer called without text")
		}
	})

	t.Run("AccessNoticeLoggedOnce", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		rec := &stubRecognizer{snapshot: &patterns.Snapshot{}}
		pb := New(StaticText("hello"), rec, &logger.Logger{Logger: zap.New(core)})

		for i := 0; i < 3; i++ {
			if _, err := pb.Values(ctx, []patterns.Key{patterns.Number.Key()}); err != nil {
				t.Fatalf("Values failed: %v", err)
			}
		}
		if rec.valueCalls != 3 {
			t.Errorf("Expected 3 recognizer calls, got %d", rec.valueCalls)
		}
		if n := logs.FilterMessage("Clipboard content accessed for value resolution").Len(); n != 1 {
			t.Errorf("Expected one access notice, got %d", n)
		}
	})
}

func TestPasteboardWithDetector(t *testing.T) {
	rec := &stubRecognizer{snapshot: &patterns.Snapshot{
		EmailAddresses:    []patterns.EmailAddress{{MatchedString: "mail@marcoboerner.com", Address: "mail@marcoboerner.com"}},
		ProbableWebSearch: "mail@marcoboerner.com",
	}}
	d, err := detector.New(New(StaticText("mail@marcoboerner.com"), rec, nil), logger.Nop())
	if err != nil {
		t.Fatalf("detector.New failed: %v", err)
	}

	emails, err := d.SearchEmail(context.Background(), true)
	if err != nil {
		t.Fatalf("SearchEmail failed: %v", err)
	}
	if len(emails) != 1 || emails[0].Address != "mail@marcoboerner.com" {
		t.Errorf("Unexpected emails: %v", emails)
	}

	t.Run("FailingRecognizer", func(t *testing.T) {
		rec := &stubRecognizer{snapshot: &patterns.Snapshot{}, patternsErr: errors.New("service down")}
		d, _ := detector.New(New(StaticText("x"), rec, nil), logger.Nop())
		if _, err := d.SearchEmail(context.Background(), true); !errors.Is(err, detector.ErrRecognition) {
			t.Errorf("Expected ErrRecognition, got %v", err)
		}
	})
}
