package transcript

import "testing"

func testResolver() *Resolver {
	return NewResolver(
		map[string]string{"U123": "Alice", "U456": "Bob"},
		map[string]string{"C123": "general"},
	)
}

func TestExpand_UserMention(t *testing.T) {
	r := testResolver()
	if got := r.Expand("<@U123>", true); got != "@Alice" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_UserMentionLabelOverride(t *testing.T) {
	r := testResolver()
	// The label wins even when the id is mapped.
	if got := r.Expand("<@U123|custom>", true); got != "@custom" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_UnmappedUserFallsBackToID(t *testing.T) {
	r := testResolver()
	if got := r.Expand("<@U999>", true); got != "@U999" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_Slackbot(t *testing.T) {
	r := NewResolver(map[string]string{"USLACKBOT": "someone else"}, nil)
	if got := r.Expand("<@USLACKBOT>", true); got != "@Slackbot" {
		t.Fatalf("reserved id must always resolve to Slackbot, got %q", got)
	}
}

func TestExpand_NoAmpersand(t *testing.T) {
	r := testResolver()
	if got := r.Expand("<@U123> pinned a message", false); got != "Alice pinned a message" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_ChannelMention(t *testing.T) {
	r := testResolver()
	if got := r.Expand("see <#C123>", true); got != "see #general" {
		t.Fatalf("got %q", got)
	}
	if got := r.Expand("see <#C123|random>", true); got != "see #random" {
		t.Fatalf("got %q", got)
	}
	if got := r.Expand("see <#C999>", true); got != "see #C999" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_Entities(t *testing.T) {
	r := testResolver()
	if got := r.Expand("a &amp; b &lt;c&gt;", true); got != "a & b <c>" {
		t.Fatalf("got %q", got)
	}
}

func TestExpand_ReindentsNewlines(t *testing.T) {
	r := testResolver()
	want := "line1\n" + indent + "line2"
	if got := r.Expand("line1\nline2", true); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDisplayName(t *testing.T) {
	r := testResolver()

	cases := []struct {
		name     string
		userID   string
		username string
		want     string
	}{
		{"mapped id", "U123", "", "Alice"},
		{"id beats username", "U123", "literal", "Alice"},
		{"unmapped id", "U999", "", "U999"},
		{"slackbot", "USLACKBOT", "", "Slackbot"},
		{"username fallback", "", "webhookbot", "webhookbot"},
		{"nothing", "", "", "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.DisplayName(tc.userID, tc.username); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
