package communityhub

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/afribit/communityhub/docstore"
)

// ErrGone is returned when a submission vanished between listing it and
// acting on it (another moderator got there first). Handlers surface it as
// a "no longer available" notice instead of a generic failure.
var ErrGone = errors.New("communityhub: submission no longer available")

// MissingFieldError reports a required intake field left empty. It is
// raised before any store or storage call.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "communityhub: required field missing: " + e.Field
}

// EventForm carries a public event submission. Exactly one of BannerFile
// and BannerURL must be set: a file is normalized and uploaded, a URL is
// stored as-is.
type EventForm struct {
	EventName       string
	Venue           string
	Address         string
	Date            string
	Time            string
	Description     string
	RegistrationURL string // optional
	BannerURL       string
	BannerFile      io.Reader
}

func (f *EventForm) validate() error {
	required := []struct{ name, value string }{
		{"eventName", f.EventName},
		{"venue", f.Venue},
		{"address", f.Address},
		{"date", f.Date},
		{"time", f.Time},
		{"description", f.Description},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingFieldError{Field: r.name}
		}
	}
	if f.BannerFile == nil && f.BannerURL == "" {
		return &MissingFieldError{Field: "banner"}
	}
	return nil
}

// Submissions owns the submittedEvents collection: public intake on one
// side, the moderation workflow on the other.
//
// The pending list is fetched from the store once and then maintained
// optimistically in memory: accept/reject mutate the local slice instead of
// re-querying. Two moderators can therefore race; the store stays the
// source of truth and Refresh reconciles the view.
type Submissions struct {
	docs  DocumentStore
	blobs ObjectStore
	feed  *docCache[PublishedEvent]

	mu      sync.Mutex
	pending []SubmittedEvent
	loaded  bool
}

// NewSubmissions wires the submission intake and moderation workflow.
// feed, when non-nil, is invalidated every time an event is published.
func NewSubmissions(docs DocumentStore, blobs ObjectStore, feed *docCache[PublishedEvent]) *Submissions {
	return &Submissions{docs: docs, blobs: blobs, feed: feed}
}

// Submit validates a public submission, resolves its banner, and creates a
// pending record. The record never appears in the public feed: the feed
// reads only the events collection.
//
// If the banner upload succeeds but the document create fails, the blob is
// knowingly leaked; intake is best-effort, not transactional. Duplicate
// submissions are not de-duplicated — moderation is the filter.
func (s *Submissions) Submit(form EventForm) (SubmittedEvent, error) {
	if err := form.validate(); err != nil {
		return SubmittedEvent{}, err
	}

	banner := form.BannerURL
	if form.BannerFile != nil {
		data, err := NormalizeImage(form.BannerFile, BannerMaxWidth)
		if err != nil {
			return SubmittedEvent{}, fmt.Errorf("communityhub: process banner: %w", err)
		}
		key := "submittedEvents/banner_" + strconv.FormatInt(time.Now().UnixNano(), 10)
		ref, err := s.blobs.Put(key, data)
		if err != nil {
			return SubmittedEvent{}, fmt.Errorf("communityhub: upload banner: %w", err)
		}
		banner = s.blobs.PublicURL(ref)
	}

	fields := map[string]any{
		"eventName":       form.EventName,
		"venue":           form.Venue,
		"address":         form.Address,
		"date":            form.Date,
		"time":            form.Time,
		"description":     form.Description,
		"banner":          banner,
		"registrationUrl": form.RegistrationURL,
		"submittedAt":     docstore.ServerTimestamp,
		"status":          "pending",
	}
	id, err := s.docs.Create(colSubmittedEvents, fields)
	if err != nil {
		return SubmittedEvent{}, fmt.Errorf("communityhub: save submission: %w", err)
	}
	metricSubmissionsReceived.Inc()

	sub := submittedEventFromFields(id, fields)
	sub.SubmittedAt = "" // server-assigned; only the store knows the value

	s.mu.Lock()
	if s.loaded {
		s.pending = append(s.pending, sub)
	}
	s.mu.Unlock()
	return sub, nil
}

// Refresh re-fetches the pending list from the store. This is the
// reconciliation mechanism for the optimistic local list.
func (s *Submissions) Refresh() error {
	docs, err := s.docs.List(colSubmittedEvents, "")
	if err != nil {
		return fmt.Errorf("communityhub: list submissions: %w", err)
	}
	pending := make([]SubmittedEvent, 0, len(docs))
	for _, d := range docs {
		pending = append(pending, submittedEventFromDoc(d))
	}
	s.mu.Lock()
	s.pending = pending
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Pending returns the current pending list, fetching it on first use.
func (s *Submissions) Pending() ([]SubmittedEvent, error) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		if err := s.Refresh(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SubmittedEvent, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

// Preview returns a submission for read-only inspection. It mutates
// nothing; ErrGone means the record was moderated away concurrently.
func (s *Submissions) Preview(id string) (SubmittedEvent, error) {
	if _, err := s.Pending(); err != nil {
		return SubmittedEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.pending {
		if sub.ID == id {
			return sub, nil
		}
	}
	return SubmittedEvent{}, ErrGone
}

// Accept publishes a submission: create the published event, then delete
// the pending record. The order is deliberate — a failure between the two
// steps duplicates the event across both collections instead of losing it,
// and duplication is the safer failure mode for editorial content.
//
// If the create fails the submission stays pending and the error is
// returned. If the delete fails the publish has already happened, so the
// item still leaves the local list and the failure is only logged; the
// stale pending document is cleaned up out-of-band rather than retried,
// since an automatic retry would mask a genuine permission or network
// fault.
func (s *Submissions) Accept(id string) (PublishedEvent, error) {
	sub, err := s.Preview(id)
	if err != nil {
		return PublishedEvent{}, err
	}

	fields := map[string]any{
		"eventName":       sub.EventName,
		"venue":           sub.Venue,
		"address":         sub.Address,
		"date":            sub.Date,
		"time":            sub.Time,
		"description":     sub.Description,
		"banner":          sub.Banner,
		"registrationUrl": sub.RegistrationURL,
		"createdAt":       docstore.ServerTimestamp,
	}
	publishedID, err := s.docs.Create(colEvents, fields)
	if err != nil {
		return PublishedEvent{}, fmt.Errorf("communityhub: publish event: %w", err)
	}

	if err := s.docs.Delete(colSubmittedEvents, sub.ID); err != nil {
		log.Printf("communityhub: submission %s published as %s but pending record not deleted: %v", sub.ID, publishedID, err)
	}

	s.removeLocal(sub.ID)
	if s.feed != nil {
		s.feed.Invalidate()
	}
	metricEventsPublished.Inc()

	return PublishedEvent{
		ID:              publishedID,
		EventName:       sub.EventName,
		Venue:           sub.Venue,
		Address:         sub.Address,
		Date:            sub.Date,
		Time:            sub.Time,
		Description:     sub.Description,
		Banner:          sub.Banner,
		RegistrationURL: sub.RegistrationURL,
	}, nil
}

// Reject deletes a submission without publishing it. The local list is
// updated on success only.
func (s *Submissions) Reject(id string) error {
	sub, err := s.Preview(id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(colSubmittedEvents, sub.ID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			s.removeLocal(sub.ID)
			return ErrGone
		}
		return fmt.Errorf("communityhub: delete submission: %w", err)
	}
	s.removeLocal(sub.ID)
	metricSubmissionsRejected.Inc()
	return nil
}

func (s *Submissions) removeLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pending[:0]
	for _, sub := range s.pending {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	s.pending = kept
}

func submittedEventFromDoc(d docstore.Document) SubmittedEvent {
	sub := submittedEventFromFields(d.ID, d.Fields)
	sub.SubmittedAt = d.Str("submittedAt")
	return sub
}

func submittedEventFromFields(id string, fields map[string]any) SubmittedEvent {
	str := func(k string) string {
		s, _ := fields[k].(string)
		return s
	}
	return SubmittedEvent{
		ID:              id,
		EventName:       str("eventName"),
		Venue:           str("venue"),
		Address:         str("address"),
		Date:            str("date"),
		Time:            str("time"),
		Description:     str("description"),
		Banner:          str("banner"),
		RegistrationURL: str("registrationUrl"),
		Status:          str("status"),
	}
}

func publishedEventFromDoc(d docstore.Document) PublishedEvent {
	return PublishedEvent{
		ID:              d.ID,
		EventName:       d.Str("eventName"),
		Venue:           d.Str("venue"),
		Address:         d.Str("address"),
		Date:            d.Str("date"),
		Time:            d.Str("time"),
		Description:     d.Str("description"),
		Banner:          d.Str("banner"),
		RegistrationURL: d.Str("registrationUrl"),
		CreatedAt:       d.Str("createdAt"),
	}
}

// ListPublishedEvents reads the events collection newest-first. The feed
// cache sits in front of this for public pages.
func ListPublishedEvents(docs DocumentStore) ([]PublishedEvent, error) {
	items, err := docs.List(colEvents, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("communityhub: list events: %w", err)
	}
	events := make([]PublishedEvent, 0, len(items))
	for _, d := range items {
		events = append(events, publishedEventFromDoc(d))
	}
	return events, nil
}

// FilterEvents returns events whose name, venue or address contains the
// query, case-insensitive. Empty query returns the input unchanged.
func FilterEvents(events []PublishedEvent, query string) []PublishedEvent {
	q := normalizeQuery(query)
	if q == "" {
		return events
	}
	var out []PublishedEvent
	for _, e := range events {
		if containsFold(e.EventName, q) || containsFold(e.Venue, q) || containsFold(e.Address, q) {
			out = append(out, e)
		}
	}
	return out
}
