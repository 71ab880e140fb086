package session

import (
	"context"
	"path/filepath"
	"testing"

	"vibeagent/internal/engine"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	idx, err := NewSearchIndex(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("NewSearchIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func sessionWith(title string, messages ...engine.ChatMessage) *Session {
	st := engine.NewState("m", "")
	for _, msg := range messages {
		st.History.Extend([]engine.ChatMessage{msg})
	}
	sess := NewSession(st)
	sess.Title = title
	return sess
}

func TestSearchIndexFindsMessages(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	lisbon := sessionWith("Lisbon Trip",
		engine.UserMessage("Plan my Lisbon trip"),
		engine.AssistantMessage("Day one: Alfama and the castle."),
	)
	taxes := sessionWith("Tax Questions",
		engine.UserMessage("How do quarterly taxes work?"),
	)

	if err := idx.Index(ctx, lisbon); err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, taxes); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(ctx, "alfama", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(hits), hits)
	}
	if hits[0].SessionID != lisbon.ID || hits[0].Title != "Lisbon Trip" || hits[0].Role != "assistant" {
		t.Errorf("hit = %+v", hits[0])
	}

	hits, err = idx.Search(ctx, "blockchain", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
}

func TestSearchIndexReindexReplacesMessages(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	sess := sessionWith("Notes", engine.UserMessage("remember the old detail"))
	if err := idx.Index(ctx, sess); err != nil {
		t.Fatal(err)
	}

	sess.State.History.Clear()
	sess.State.History.Append(engine.UserMessage("a brand new detail"))
	if err := idx.Index(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if hits, _ := idx.Search(ctx, "old detail", 10); len(hits) != 0 {
		t.Errorf("stale messages survived reindex: %+v", hits)
	}
	if hits, _ := idx.Search(ctx, "brand new", 10); len(hits) != 1 {
		t.Errorf("reindexed message missing: %+v", hits)
	}
}

func TestSearchIndexRemove(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	sess := sessionWith("Gone Soon", engine.UserMessage("ephemeral content"))
	if err := idx.Index(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}

	if hits, _ := idx.Search(ctx, "ephemeral", 10); len(hits) != 0 {
		t.Errorf("removed session still indexed: %+v", hits)
	}
}
