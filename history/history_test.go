package history

import (
	"context"
	"testing"
	"time"

	"github.com/shekohex/voicetype/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Save(context.Background(), types.HistoryItem{Text: "hello", WordCount: 1})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	items, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].ID != id {
		t.Errorf("ID = %q, want %q", items[0].ID, id)
	}
	if items[0].Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i, text := range []string{"first", "second", "third"} {
		_, err := s.Save(context.Background(), types.HistoryItem{
			Text:      text,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save %q: %v", text, err)
		}
	}

	items, err := s.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Text != "third" || items[1].Text != "second" {
		t.Errorf("order = [%q %q], want [third second]", items[0].Text, items[1].Text)
	}
}

func TestStatsAggregation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []types.HistoryItem{
		{Text: "one two three", WordCount: 3, Duration: time.Minute},
		{Text: "four five", WordCount: 2, Duration: 30 * time.Second},
	}
	for _, r := range records {
		if _, err := s.Save(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", st.Sessions)
	}
	if st.TotalWords != 5 {
		t.Errorf("TotalWords = %d, want 5", st.TotalWords)
	}
	if st.TotalDuration != 90*time.Second {
		t.Errorf("TotalDuration = %v, want 90s", st.TotalDuration)
	}
	// 5 words over 1.5 minutes.
	if got, want := st.AvgWordsPerMinute, 5.0/1.5; got < want-0.001 || got > want+0.001 {
		t.Errorf("AvgWordsPerMinute = %v, want %v", got, want)
	}
}

func TestStatsOnEmptyStore(t *testing.T) {
	s := openTestStore(t)

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Sessions != 0 || st.AvgWordsPerMinute != 0 {
		t.Errorf("unexpected stats on empty store: %+v", st)
	}
}

func TestSaveRespectsCancelledContext(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Save(ctx, types.HistoryItem{Text: "x"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
