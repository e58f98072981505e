package communityhub

import "github.com/afribit/communityhub/docstore"

// Collection names in the document store.
const (
	colSubmittedEvents = "submittedEvents"
	colEvents          = "events"
	colTestimonials    = "testimonials"
	colSubscribers     = "newsletterSubscribers"
	colNews            = "news"
)

// SubmittedEvent is a community-submitted event awaiting moderation. It
// lives only in the submittedEvents collection; accepting or rejecting it
// removes the record rather than flipping its status.
type SubmittedEvent struct {
	ID              string
	EventName       string
	Venue           string
	Address         string
	Date            string // free-form, as entered
	Time            string // free-form, as entered
	Description     string
	Banner          string // public URL
	RegistrationURL string
	SubmittedAt     string
	Status          string // always "pending"
}

// PublishedEvent is a moderator-approved event in the public events
// collection. CreatedAt is stamped at publish time, not copied from the
// submission.
type PublishedEvent struct {
	ID              string
	EventName       string
	Venue           string
	Address         string
	Date            string
	Time            string
	Description     string
	Banner          string
	RegistrationURL string
	CreatedAt       string
}

// Testimonial is one community testimonial shown on the public site.
type Testimonial struct {
	ID          string
	Name        string
	Role        string
	Text        string
	Image       string // public URL, may be empty
	TwitterLink string // optional, must point at twitter.com or x.com
	CreatedAt   string
}

// NewsletterSubscriber is a newsletter signup. Creation happens on the
// public site's signup form elsewhere; this engine only lists and deletes.
type NewsletterSubscriber struct {
	ID           string
	Email        string
	SubscribedAt string
}

// NewsPost is a read-only news article rendered on the public site.
type NewsPost struct {
	ID        string
	Title     string
	Slug      string
	Summary   string
	Body      string // markdown
	Image     string
	CreatedAt string
}

// DocumentStore is the document database collaborator. The engine only
// needs collection-scoped CRUD; *docstore.Store satisfies it, and tests
// wrap it to inject faults.
type DocumentStore interface {
	Create(collection string, fields map[string]any) (string, error)
	List(collection, orderBy string) ([]docstore.Document, error)
	Update(collection, id string, partial map[string]any) error
	Delete(collection, id string) error
}

// ObjectStore is the blob storage collaborator for banners and avatars.
// *blobstore.Store satisfies it.
type ObjectStore interface {
	Put(key string, data []byte) (string, error)
	PublicURL(ref string) string
	Delete(refOrURL string) error
	Hosts(url string) bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
