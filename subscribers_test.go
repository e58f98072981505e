package communityhub

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func seedSubscribers(t *testing.T, docs *fakeDocStore, emails ...string) {
	t.Helper()
	for _, email := range emails {
		if _, err := docs.Create(colSubscribers, map[string]any{
			"email":        email,
			"subscribedAt": "2026-08-01T10:00:00Z",
		}); err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
	}
}

func TestFilterSubscribers(t *testing.T) {
	subs := []NewsletterSubscriber{
		{Email: "ada@example.com"},
		{Email: "Bola@example.com"},
		{Email: "chi@other.org"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"ada@example.com", "Bola@example.com", "chi@other.org"}},
		{"a@", []string{"ada@example.com", "Bola@example.com"}},
		{"BOLA", []string{"Bola@example.com"}},
		{"other.org", []string{"chi@other.org"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		got := FilterSubscribers(subs, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("FilterSubscribers(%q) = %d results, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Email != tt.want[i] {
				t.Errorf("FilterSubscribers(%q)[%d] = %q, want %q", tt.term, i, got[i].Email, tt.want[i])
			}
		}
	}
}

func TestRecipientsFallsBackToVisible(t *testing.T) {
	visible := []NewsletterSubscriber{
		{Email: "ada@example.com"},
		{Email: "bola@example.com"},
	}

	// Nothing selected: the action targets the whole visible (filtered) view.
	got := Recipients(nil, visible)
	if len(got) != 2 {
		t.Fatalf("empty selection: %d recipients, want 2", len(got))
	}

	got = Recipients([]string{"bola@example.com"}, visible)
	if len(got) != 1 || got[0].Email != "bola@example.com" {
		t.Errorf("explicit selection not honored: %v", got)
	}

	// Selection of something not on screen targets nobody.
	got = Recipients([]string{"gone@example.com"}, visible)
	if len(got) != 0 {
		t.Errorf("off-screen selection: %d recipients, want 0", len(got))
	}
}

func TestFilteredComposeTargetsOnlyMatches(t *testing.T) {
	all := []NewsletterSubscriber{
		{Email: "ada@example.com"},
		{Email: "bola@example.com"},
		{Email: "chi@other.org"},
	}
	visible := FilterSubscribers(all, "a@")
	recipients := Recipients(nil, visible)

	compose := ComposeURL(recipients)
	u, err := url.Parse(compose)
	if err != nil {
		t.Fatalf("parse compose URL: %v", err)
	}
	bcc := u.Query().Get("bcc")
	if bcc != "ada@example.com,bola@example.com" {
		t.Errorf("bcc = %q, want the two filtered addresses", bcc)
	}
	if strings.Contains(bcc, "chi@other.org") {
		t.Error("compose link includes a filtered-out subscriber")
	}
}

func TestComposeURLIsGmailBCC(t *testing.T) {
	compose := ComposeURL([]NewsletterSubscriber{{Email: "ada@example.com"}})
	u, err := url.Parse(compose)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "mail.google.com" {
		t.Errorf("host = %q, want mail.google.com", u.Host)
	}
	q := u.Query()
	if q.Get("view") != "cm" || q.Get("bcc") != "ada@example.com" {
		t.Errorf("query = %v", q)
	}
	if q.Get("to") != "" {
		t.Error("recipients must be in bcc, never to")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []NewsletterSubscriber{
		{Email: "ada@example.com", SubscribedAt: "2026-08-01T10:00:00Z"},
		{Email: "with,comma@example.com", SubscribedAt: "2026-08-02T11:00:00Z"},
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("%d CSV lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "Email,Subscribed Date" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], `"with,comma@example.com"`) {
		t.Errorf("comma in email not quoted: %q", lines[2])
	}
}

func TestSubscriberDelete(t *testing.T) {
	docs := newFakeDocStore()
	svc := NewSubscribers(docs)
	seedSubscribers(t, docs, "ada@example.com")

	subs, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("%d subscribers, want 1", len(subs))
	}

	if err := svc.Delete(subs[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if docs.count(colSubscribers) != 0 {
		t.Errorf("%d subscribers remain, want 0", docs.count(colSubscribers))
	}
	if err := svc.Delete(subs[0].ID); !errors.Is(err, ErrGone) {
		t.Errorf("second delete err = %v, want ErrGone", err)
	}
}
