package communityhub

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/afribit/communityhub/docstore"
)

// MaxTestimonialText is the testimonial text ceiling. Enforced before any
// store call so over-long text never generates network traffic.
const MaxTestimonialText = 280

var (
	// ErrTextTooLong rejects testimonial text over MaxTestimonialText runes.
	ErrTextTooLong = errors.New("communityhub: testimonial text too long")
	// ErrBadTwitterLink rejects links that point at neither twitter.com nor x.com.
	ErrBadTwitterLink = errors.New("communityhub: link must point at twitter.com or x.com")
)

// ValidTwitterLink reports whether link is acceptable for a testimonial:
// empty (the field is optional) or containing twitter.com / x.com.
func ValidTwitterLink(link string) bool {
	if strings.TrimSpace(link) == "" {
		return true
	}
	return strings.Contains(link, "twitter.com") || strings.Contains(link, "x.com")
}

// TestimonialForm carries a testimonial create or update. ImageFile, when
// set, is normalized to an avatar and uploaded; otherwise ImageURL (which
// may be empty) is stored as-is.
type TestimonialForm struct {
	Name        string
	Role        string
	Text        string
	TwitterLink string
	ImageURL    string
	ImageFile   io.Reader
}

func (f *TestimonialForm) validate() error {
	required := []struct{ name, value string }{
		{"name", f.Name},
		{"role", f.Role},
		{"text", f.Text},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &MissingFieldError{Field: r.name}
		}
	}
	if len([]rune(f.Text)) > MaxTestimonialText {
		return ErrTextTooLong
	}
	if !ValidTwitterLink(f.TwitterLink) {
		return ErrBadTwitterLink
	}
	return nil
}

// Testimonials curates the testimonials collection.
type Testimonials struct {
	docs  DocumentStore
	blobs ObjectStore
}

// NewTestimonials wires the testimonial curation service.
func NewTestimonials(docs DocumentStore, blobs ObjectStore) *Testimonials {
	return &Testimonials{docs: docs, blobs: blobs}
}

// List returns all testimonials, newest first.
func (t *Testimonials) List() ([]Testimonial, error) {
	docs, err := t.docs.List(colTestimonials, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("communityhub: list testimonials: %w", err)
	}
	items := make([]Testimonial, 0, len(docs))
	for _, d := range docs {
		items = append(items, testimonialFromDoc(d))
	}
	return items, nil
}

// Create validates and stores a new testimonial.
func (t *Testimonials) Create(form TestimonialForm) (Testimonial, error) {
	if err := form.validate(); err != nil {
		return Testimonial{}, err
	}
	image, err := t.resolveImage(form)
	if err != nil {
		return Testimonial{}, err
	}
	fields := testimonialFields(form, image)
	id, err := t.docs.Create(colTestimonials, fields)
	if err != nil {
		return Testimonial{}, fmt.Errorf("communityhub: save testimonial: %w", err)
	}
	metricTestimonialsSaved.Inc()
	return Testimonial{
		ID:          id,
		Name:        form.Name,
		Role:        form.Role,
		Text:        form.Text,
		Image:       image,
		TwitterLink: form.TwitterLink,
	}, nil
}

// Update replaces a testimonial's fields. When the image changes and the
// old one lives in our storage, the stale blob is deleted best-effort: a
// cleanup failure is logged and never blocks the update.
func (t *Testimonials) Update(id string, form TestimonialForm) (Testimonial, error) {
	if err := form.validate(); err != nil {
		return Testimonial{}, err
	}
	existing, err := t.get(id)
	if err != nil {
		return Testimonial{}, err
	}
	image, err := t.resolveImage(form)
	if err != nil {
		return Testimonial{}, err
	}

	t.cleanupImage(existing.Image, image)

	fields := testimonialFields(form, image)
	if err := t.docs.Update(colTestimonials, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Testimonial{}, ErrGone
		}
		return Testimonial{}, fmt.Errorf("communityhub: update testimonial: %w", err)
	}
	metricTestimonialsSaved.Inc()
	return Testimonial{
		ID:          id,
		Name:        form.Name,
		Role:        form.Role,
		Text:        form.Text,
		Image:       image,
		TwitterLink: form.TwitterLink,
	}, nil
}

// Delete removes a testimonial, cleaning up its stored avatar best-effort
// first. Cleanup failure does not block the document delete.
func (t *Testimonials) Delete(id string) error {
	existing, err := t.get(id)
	if err != nil {
		return err
	}
	t.cleanupImage(existing.Image, "")
	if err := t.docs.Delete(colTestimonials, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrGone
		}
		return fmt.Errorf("communityhub: delete testimonial: %w", err)
	}
	return nil
}

func (t *Testimonials) get(id string) (Testimonial, error) {
	items, err := t.List()
	if err != nil {
		return Testimonial{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return Testimonial{}, ErrGone
}

func (t *Testimonials) resolveImage(form TestimonialForm) (string, error) {
	if form.ImageFile == nil {
		return form.ImageURL, nil
	}
	data, err := NormalizeImage(form.ImageFile, AvatarMaxWidth)
	if err != nil {
		return "", fmt.Errorf("communityhub: process avatar: %w", err)
	}
	key := "testimonials/image_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	ref, err := t.blobs.Put(key, data)
	if err != nil {
		return "", fmt.Errorf("communityhub: upload avatar: %w", err)
	}
	return t.blobs.PublicURL(ref), nil
}

// cleanupImage deletes the old stored avatar when it is ours and the image
// actually changed. Advisory only: the result is logged, never propagated.
func (t *Testimonials) cleanupImage(old, new string) {
	if old == "" || old == new || !t.blobs.Hosts(old) {
		return
	}
	if err := t.blobs.Delete(old); err != nil {
		log.Printf("communityhub: could not delete stale testimonial image %s: %v", old, err)
	}
}

func testimonialFields(form TestimonialForm, image string) map[string]any {
	return map[string]any{
		"name":        form.Name,
		"role":        form.Role,
		"text":        form.Text,
		"image":       image,
		"twitterLink": form.TwitterLink,
		"createdAt":   docstore.ServerTimestamp,
	}
}

func testimonialFromDoc(d docstore.Document) Testimonial {
	return Testimonial{
		ID:          d.ID,
		Name:        d.Str("name"),
		Role:        d.Str("role"),
		Text:        d.Str("text"),
		Image:       d.Str("image"),
		TwitterLink: d.Str("twitterLink"),
		CreatedAt:   d.Str("createdAt"),
	}
}
