package communityhub

import (
	"fmt"

	"github.com/afribit/communityhub/docstore"
)

// ListNews reads the news collection newest-first. News is authored by the
// organization out-of-band; this engine only renders it.
func ListNews(docs DocumentStore) ([]NewsPost, error) {
	items, err := docs.List(colNews, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("communityhub: list news: %w", err)
	}
	posts := make([]NewsPost, 0, len(items))
	for _, d := range items {
		posts = append(posts, newsPostFromDoc(d))
	}
	return posts, nil
}

// FindNewsPost returns the post with the given slug from a listing, or
// ErrGone if none matches.
func FindNewsPost(posts []NewsPost, slug string) (NewsPost, error) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return NewsPost{}, ErrGone
}

func newsPostFromDoc(d docstore.Document) NewsPost {
	return NewsPost{
		ID:        d.ID,
		Title:     d.Str("title"),
		Slug:      d.Str("slug"),
		Summary:   d.Str("summary"),
		Body:      d.Str("body"),
		Image:     d.Str("image"),
		CreatedAt: d.Str("createdAt"),
	}
}
