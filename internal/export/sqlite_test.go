package export

import (
	"context"
	"path/filepath"
	"testing"

	"slackdm/internal/slack"
)

func TestSQLiteArchive_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive", "dm.db")
	a, err := NewSQLiteArchive(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx := context.Background()
	msgs := []slack.Message{
		{Type: "message", TS: "101.000000", User: "U1", Text: "newest"},
		{Type: "message", TS: "100.000000", User: "U1", Text: "oldest", ThreadTS: "100.000000"},
	}
	if err := a.SaveMessages(ctx, "D123", msgs); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveUsers(ctx, map[string]string{"U1": "Alice"}); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE channel = ?`, "D123").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 messages, got %d", count)
	}

	var name string
	if err := a.db.QueryRow(`SELECT display_name FROM users WHERE id = ?`, "U1").Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Alice" {
		t.Fatalf("display_name = %q", name)
	}
}

func TestSQLiteArchive_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dm.db")
	a, err := NewSQLiteArchive(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx := context.Background()
	msgs := []slack.Message{{Type: "message", TS: "100.000000", Text: "first"}}
	if err := a.SaveMessages(ctx, "D123", msgs); err != nil {
		t.Fatal(err)
	}

	// Re-archiving the same range upserts in place.
	msgs[0].Text = "edited"
	if err := a.SaveMessages(ctx, "D123", msgs); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", count)
	}

	var text string
	if err := a.db.QueryRow(`SELECT text FROM messages WHERE ts = ?`, "100.000000").Scan(&text); err != nil {
		t.Fatal(err)
	}
	if text != "edited" {
		t.Fatalf("text = %q", text)
	}
}
