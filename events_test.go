package communityhub

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/afribit/communityhub/docstore"
)

// fakeDocStore is an in-memory DocumentStore. Per-collection error hooks
// let tests fail exactly one step of a multi-step workflow.
type fakeDocStore struct {
	collections map[string]map[string]map[string]any
	order       map[string][]string
	nextID      int

	createErr map[string]error
	deleteErr map[string]error

	createCalls int
	deleteCalls int
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
		createErr:   make(map[string]error),
		deleteErr:   make(map[string]error),
	}
}

func (f *fakeDocStore) Create(collection string, fields map[string]any) (string, error) {
	f.createCalls++
	if err := f.createErr[collection]; err != nil {
		return "", err
	}
	f.nextID++
	id := "doc-" + strconv.Itoa(f.nextID)
	stored := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == docstore.ServerTimestamp {
			v = time.Now().UTC().Format(time.RFC3339)
		}
		stored[k] = v
	}
	if f.collections[collection] == nil {
		f.collections[collection] = make(map[string]map[string]any)
	}
	f.collections[collection][id] = stored
	f.order[collection] = append(f.order[collection], id)
	return id, nil
}

func (f *fakeDocStore) List(collection, orderBy string) ([]docstore.Document, error) {
	var out []docstore.Document
	for _, id := range f.order[collection] {
		fields, ok := f.collections[collection][id]
		if !ok {
			continue
		}
		out = append(out, docstore.Document{ID: id, Fields: fields})
	}
	return out, nil
}

func (f *fakeDocStore) Update(collection, id string, partial map[string]any) error {
	doc, ok := f.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range partial {
		if v == docstore.ServerTimestamp {
			v = time.Now().UTC().Format(time.RFC3339)
		}
		doc[k] = v
	}
	return nil
}

func (f *fakeDocStore) Delete(collection, id string) error {
	f.deleteCalls++
	if err := f.deleteErr[collection]; err != nil {
		return err
	}
	if _, ok := f.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	delete(f.collections[collection], id)
	return nil
}

func (f *fakeDocStore) count(collection string) int {
	return len(f.collections[collection])
}

// fakeBlobStore is an in-memory ObjectStore.
type fakeBlobStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(key string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return key, nil
}

func (f *fakeBlobStore) PublicURL(ref string) string {
	return "https://media.test/" + ref
}

func (f *fakeBlobStore) Delete(refOrURL string) error {
	f.deleted = append(f.deleted, refOrURL)
	return nil
}

func (f *fakeBlobStore) Hosts(url string) bool {
	return len(url) > len("https://media.test/") && url[:len("https://media.test/")] == "https://media.test/"
}

func validEventForm() EventForm {
	return EventForm{
		EventName:   "Lagos Meetup",
		Venue:       "Freedom Park",
		Address:     "1 Broad Street, Lagos",
		Date:        "2026-09-12",
		Time:        "15:00",
		Description: "Monthly bitcoin meetup.",
		BannerURL:   "https://cdn.test/banner.jpg",
	}
}

func TestSubmitCreatesPendingOnly(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	sub, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if docs.count(colSubmittedEvents) != 1 {
		t.Errorf("submittedEvents has %d docs, want 1", docs.count(colSubmittedEvents))
	}
	if docs.count(colEvents) != 0 {
		t.Errorf("events has %d docs, want 0; submissions must never publish directly", docs.count(colEvents))
	}

	stored := docs.collections[colSubmittedEvents][sub.ID]
	if stored["status"] != "pending" {
		t.Errorf("status = %v, want pending", stored["status"])
	}
	if stored["eventName"] != "Lagos Meetup" {
		t.Errorf("eventName = %v", stored["eventName"])
	}
	if ts, _ := stored["submittedAt"].(string); ts == "" {
		t.Error("submittedAt not stamped by store")
	}
}

func TestSubmitMissingFieldTouchesNothing(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	form := validEventForm()
	form.Venue = ""
	_, err := subs.Submit(form)

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError", err)
	}
	if missing.Field != "venue" {
		t.Errorf("missing field = %q, want venue", missing.Field)
	}
	if docs.createCalls != 0 {
		t.Errorf("store was called %d times despite invalid form", docs.createCalls)
	}
}

func TestSubmitRequiresBanner(t *testing.T) {
	subs := NewSubmissions(newFakeDocStore(), newFakeBlobStore(), nil)
	form := validEventForm()
	form.BannerURL = ""
	var missing *MissingFieldError
	if _, err := subs.Submit(form); !errors.As(err, &missing) || missing.Field != "banner" {
		t.Fatalf("err = %v, want MissingFieldError{banner}", err)
	}
}

func TestAcceptMovesSubmission(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	published, err := subs.Accept(submitted.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if docs.count(colSubmittedEvents) != 0 {
		t.Errorf("submittedEvents has %d docs after accept, want 0", docs.count(colSubmittedEvents))
	}
	if docs.count(colEvents) != 1 {
		t.Fatalf("events has %d docs after accept, want 1", docs.count(colEvents))
	}

	stored := docs.collections[colEvents][published.ID]
	if stored["eventName"] != "Lagos Meetup" || stored["venue"] != "Freedom Park" {
		t.Errorf("published content does not match submission: %v", stored)
	}
	if ts, _ := stored["createdAt"].(string); ts == "" {
		t.Error("createdAt not stamped at publish time")
	}
	if _, ok := stored["status"]; ok {
		t.Error("published event must not carry the pending status field")
	}

	pending, err := subs.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("local pending list has %d items after accept, want 0", len(pending))
	}
}

func TestAcceptCreateFailureLeavesSubmissionPending(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	docs.createErr[colEvents] = fmt.Errorf("backend unavailable")
	if _, err := subs.Accept(submitted.ID); err == nil {
		t.Fatal("Accept succeeded despite create failure")
	}

	if docs.count(colSubmittedEvents) != 1 {
		t.Errorf("submission was lost: submittedEvents has %d docs, want 1", docs.count(colSubmittedEvents))
	}
	if docs.count(colEvents) != 0 {
		t.Errorf("events has %d docs, want 0", docs.count(colEvents))
	}
	pending, _ := subs.Pending()
	if len(pending) != 1 {
		t.Errorf("pending list has %d items, want 1; a failed accept must not drop the item", len(pending))
	}
}

func TestAcceptDeleteFailureDuplicatesRatherThanLoses(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	docs.deleteErr[colSubmittedEvents] = fmt.Errorf("backend unavailable")
	published, err := subs.Accept(submitted.ID)
	if err != nil {
		t.Fatalf("Accept must succeed when only the cleanup delete fails: %v", err)
	}
	if published.EventName != "Lagos Meetup" {
		t.Errorf("published.EventName = %q", published.EventName)
	}

	// The event exists in both collections: duplicated, never lost.
	if docs.count(colEvents) != 1 {
		t.Errorf("events has %d docs, want 1", docs.count(colEvents))
	}
	if docs.count(colSubmittedEvents) != 1 {
		t.Errorf("submittedEvents has %d docs, want 1 (stale record kept)", docs.count(colSubmittedEvents))
	}

	// But the moderator's working list moves on.
	pending, _ := subs.Pending()
	if len(pending) != 0 {
		t.Errorf("pending list has %d items, want 0", len(pending))
	}
}

func TestRejectNeverPublishes(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := subs.Reject(submitted.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if docs.count(colSubmittedEvents) != 0 {
		t.Errorf("submittedEvents has %d docs after reject, want 0", docs.count(colSubmittedEvents))
	}
	if docs.count(colEvents) != 0 {
		t.Errorf("events has %d docs after reject, want 0", docs.count(colEvents))
	}
}

func TestModerationOfVanishedSubmission(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Another moderator deletes the record out from under us.
	if err := docs.Delete(colSubmittedEvents, submitted.ID); err != nil {
		t.Fatalf("seed delete: %v", err)
	}

	if err := subs.Reject(submitted.ID); !errors.Is(err, ErrGone) {
		t.Errorf("Reject err = %v, want ErrGone", err)
	}
	if _, err := subs.Preview("never-existed"); !errors.Is(err, ErrGone) {
		t.Errorf("Preview err = %v, want ErrGone", err)
	}
}

func TestAcceptInvalidatesFeedCache(t *testing.T) {
	docs := newFakeDocStore()
	feed := newDocCache(func() ([]PublishedEvent, error) {
		return ListPublishedEvents(docs)
	}, time.Hour)
	subs := NewSubmissions(docs, newFakeBlobStore(), feed)

	before, err := feed.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("feed has %d events before publish", len(before))
	}

	submitted, err := subs.Submit(validEventForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := subs.Accept(submitted.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	after, err := feed.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("feed has %d events after publish, want 1 (cache not invalidated?)", len(after))
	}
}

func TestRefreshReconcilesLocalList(t *testing.T) {
	docs := newFakeDocStore()
	subs := NewSubmissions(docs, newFakeBlobStore(), nil)

	if _, err := subs.Submit(validEventForm()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// A record created outside this process shows up after Refresh.
	other := validEventForm()
	if _, err := docs.Create(colSubmittedEvents, map[string]any{
		"eventName": other.EventName + " II",
		"status":    "pending",
	}); err != nil {
		t.Fatalf("seed create: %v", err)
	}

	if err := subs.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	pending, _ := subs.Pending()
	if len(pending) != 2 {
		t.Errorf("pending list has %d items after refresh, want 2", len(pending))
	}
}

func TestFilterEvents(t *testing.T) {
	events := []PublishedEvent{
		{EventName: "Lagos Meetup", Venue: "Freedom Park", Address: "Broad Street"},
		{EventName: "Abuja Conference", Venue: "ICC", Address: "Airport Road"},
		{EventName: "Workshop", Venue: "Lagos Hub", Address: "Marina"},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"lagos", 2},
		{"LAGOS", 2},
		{"airport", 1},
		{"  conference  ", 1},
		{"nairobi", 0},
	}
	for _, tt := range tests {
		if got := FilterEvents(events, tt.query); len(got) != tt.want {
			t.Errorf("FilterEvents(%q) returned %d events, want %d", tt.query, len(got), tt.want)
		}
	}
}
