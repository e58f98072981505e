package communityhub

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/afribit/communityhub/docstore"
)

// Subscribers is the read/delete view over newsletter signups. Signups are
// created by the public site's newsletter form elsewhere; here they are
// listed, filtered, exported, and contacted via a mail-client deep link.
type Subscribers struct {
	docs DocumentStore
}

// NewSubscribers wires the subscriber admin service.
func NewSubscribers(docs DocumentStore) *Subscribers {
	return &Subscribers{docs: docs}
}

// List returns all subscribers, most recent signup first.
func (s *Subscribers) List() ([]NewsletterSubscriber, error) {
	docs, err := s.docs.List(colSubscribers, "subscribedAt")
	if err != nil {
		return nil, fmt.Errorf("communityhub: list subscribers: %w", err)
	}
	subs := make([]NewsletterSubscriber, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, NewsletterSubscriber{
			ID:           d.ID,
			Email:        d.Str("email"),
			SubscribedAt: d.Str("subscribedAt"),
		})
	}
	return subs, nil
}

// Delete removes a subscriber by id.
func (s *Subscribers) Delete(id string) error {
	if err := s.docs.Delete(colSubscribers, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrGone
		}
		return fmt.Errorf("communityhub: delete subscriber: %w", err)
	}
	metricSubscribersRemoved.Inc()
	return nil
}

// FilterSubscribers returns subscribers whose email contains term,
// case-insensitive. Empty term returns the input unchanged.
func FilterSubscribers(subs []NewsletterSubscriber, term string) []NewsletterSubscriber {
	q := normalizeQuery(term)
	if q == "" {
		return subs
	}
	var out []NewsletterSubscriber
	for _, sub := range subs {
		if containsFold(sub.Email, q) {
			out = append(out, sub)
		}
	}
	return out
}

// Recipients resolves which subscribers an action targets: the explicit
// selection when there is one, otherwise everyone currently visible. The
// fallback means "compose" and "export" with nothing ticked operate on the
// filtered view, not the full list.
func Recipients(selected []string, visible []NewsletterSubscriber) []NewsletterSubscriber {
	if len(selected) == 0 {
		return visible
	}
	set := make(map[string]struct{}, len(selected))
	for _, email := range selected {
		set[email] = struct{}{}
	}
	var out []NewsletterSubscriber
	for _, sub := range visible {
		if _, ok := set[sub.Email]; ok {
			out = append(out, sub)
		}
	}
	return out
}

// ComposeURL builds a Gmail compose deep link with the recipients in BCC,
// so subscribers never see each other's addresses. Nothing is sent server
// side.
func ComposeURL(recipients []NewsletterSubscriber) string {
	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		emails = append(emails, r.Email)
	}
	return "https://mail.google.com/mail/?view=cm&fs=1&bcc=" + url.QueryEscape(strings.Join(emails, ","))
}

// WriteCSV writes the recipients as a two-column CSV export.
func WriteCSV(w io.Writer, recipients []NewsletterSubscriber) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email", "Subscribed Date"}); err != nil {
		return err
	}
	for _, r := range recipients {
		if err := cw.Write([]string{r.Email, r.SubscribedAt}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
