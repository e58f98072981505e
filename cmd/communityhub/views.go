package main

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	hub "github.com/afribit/communityhub"
)

// views returns a plain default template set. Deployments that want their
// own markup supply their own ViewFuncs instead.
func views() hub.ViewFuncs {
	return hub.ViewFuncs{
		Home:              homeView,
		Community:         communityView,
		EventList:         eventListView,
		EventDetail:       eventDetailView,
		SubmitForm:        submitFormView,
		NewsIndex:         newsIndexView,
		NewsArticle:       newsArticleView,
		AdminLogin:        adminLoginView,
		AdminDashboard:    adminDashboardView,
		AdminPreview:      adminPreviewView,
		AdminConfirm:      adminConfirmView,
		AdminTestimonials: adminTestimonialsView,
		AdminSubscribers:  adminSubscribersView,
		NotFound:          notFoundView,
		ServerError:       serverErrorView,
	}
}

func page(title string, body func(w io.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>", html.EscapeString(title))
		body(w)
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func esc(s string) string { return html.EscapeString(s) }

func writeEventCard(w io.Writer, e hub.PublishedEvent) {
	fmt.Fprintf(w, "<article><h3><a href=\"/community/events/%s/\">%s</a></h3>", esc(e.ID), esc(e.EventName))
	if e.Banner != "" {
		fmt.Fprintf(w, "<img src=%q alt=%q>", e.Banner, esc(e.EventName))
	}
	fmt.Fprintf(w, "<p>%s, %s — %s %s</p></article>", esc(e.Venue), esc(e.Address), esc(e.Date), esc(e.Time))
}

func homeView(events []hub.PublishedEvent, posts []hub.NewsPost, testimonials []hub.Testimonial, siteURL string) templ.Component {
	return page("Home", func(w io.Writer) {
		io.WriteString(w, "<h1>Bitcoin Community</h1><h2>Upcoming Events</h2>")
		for _, e := range events {
			writeEventCard(w, e)
		}
		io.WriteString(w, "<h2>News</h2><ul>")
		for _, p := range posts {
			fmt.Fprintf(w, "<li><a href=\"/news/%s/\">%s</a></li>", esc(p.Slug), esc(p.Title))
		}
		io.WriteString(w, "</ul><h2>Testimonials</h2>")
		for _, t := range testimonials {
			fmt.Fprintf(w, "<blockquote>%s<footer>%s, %s</footer></blockquote>", esc(t.Text), esc(t.Name), esc(t.Role))
		}
	})
}

func communityView(events []hub.PublishedEvent, query, csrfToken string) templ.Component {
	return page("Community Events", func(w io.Writer) {
		fmt.Fprintf(w, "<h1>Events</h1><form method=\"GET\"><input name=\"q\" value=%q placeholder=\"Search events\"><button>Search</button></form>", esc(query))
		io.WriteString(w, "<p><a href=\"/community/submit/\">Submit an event</a></p>")
		for _, e := range events {
			writeEventCard(w, e)
		}
	})
}

func eventListView(events []hub.PublishedEvent, query string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, e := range events {
			writeEventCard(w, e)
		}
		return nil
	})
}

func eventDetailView(e hub.PublishedEvent, siteURL string) templ.Component {
	return page(e.EventName, func(w io.Writer) {
		writeEventCard(w, e)
		fmt.Fprintf(w, "<p>%s</p>", esc(e.Description))
		if e.RegistrationURL != "" {
			fmt.Fprintf(w, "<p><a href=%q>Register</a></p>", e.RegistrationURL)
		}
		fmt.Fprintf(w, "<script type=\"application/ld+json\">%s</script>", hub.EventJsonLD(e, hub.SiteConfig{URL: siteURL}))
	})
}

func submitFormView(form hub.EventForm, message, csrfToken string) templ.Component {
	return page("Submit an Event", func(w io.Writer) {
		io.WriteString(w, "<h1>Submit an Event</h1>")
		if message != "" {
			fmt.Fprintf(w, "<p role=\"alert\">%s</p>", esc(message))
		}
		fmt.Fprintf(w, "<form method=\"POST\" enctype=\"multipart/form-data\"><input type=\"hidden\" name=\"_csrf\" value=%q>", esc(csrfToken))
		for _, f := range [][2]string{
			{"eventName", form.EventName}, {"venue", form.Venue}, {"address", form.Address},
			{"date", form.Date}, {"time", form.Time}, {"registrationUrl", form.RegistrationURL},
			{"bannerUrl", form.BannerURL},
		} {
			fmt.Fprintf(w, "<label>%s <input name=%q value=%q></label><br>", esc(f[0]), f[0], esc(f[1]))
		}
		fmt.Fprintf(w, "<label>description <textarea name=\"description\">%s</textarea></label><br>", esc(form.Description))
		io.WriteString(w, "<label>banner <input type=\"file\" name=\"banner\"></label><br><button>Submit</button></form>")
	})
}

func newsIndexView(posts []hub.NewsPost) templ.Component {
	return page("News", func(w io.Writer) {
		io.WriteString(w, "<h1>News</h1>")
		for _, p := range posts {
			fmt.Fprintf(w, "<article><h2><a href=\"/news/%s/\">%s</a></h2><p>%s</p></article>", esc(p.Slug), esc(p.Title), esc(p.Summary))
		}
	})
}

func newsArticleView(post hub.NewsPost, body templ.Component) templ.Component {
	return page(post.Title, func(w io.Writer) {
		fmt.Fprintf(w, "<article><h1>%s</h1>", esc(post.Title))
		body.Render(context.Background(), w)
		io.WriteString(w, "</article>")
	})
}

func adminLoginView(showError bool, csrfToken string) templ.Component {
	return page("Admin Login", func(w io.Writer) {
		if showError {
			io.WriteString(w, "<p role=\"alert\">Wrong password.</p>")
		}
		fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/login/\"><input type=\"hidden\" name=\"_csrf\" value=%q><input type=\"password\" name=\"password\"><button>Log in</button></form>", esc(csrfToken))
	})
}

func adminDashboardView(pending []hub.SubmittedEvent, message, csrfToken string) templ.Component {
	return page("Submitted Events", func(w io.Writer) {
		io.WriteString(w, "<h1>Submitted Events</h1>")
		if message != "" {
			fmt.Fprintf(w, "<p role=\"status\">%s</p>", esc(message))
		}
		fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/submissions/refresh/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Refresh</button></form>", esc(csrfToken))
		if len(pending) == 0 {
			io.WriteString(w, "<p>No pending submissions.</p>")
		}
		for _, s := range pending {
			fmt.Fprintf(w, "<article><h3>%s</h3><p>%s — %s, %s</p>", esc(s.EventName), esc(s.Date), esc(s.Venue), esc(s.Address))
			fmt.Fprintf(w, "<a href=\"/admin/submissions/%s/\">View</a> ", esc(s.ID))
			fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/submissions/%s/accept/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Accept</button></form>", esc(s.ID), esc(csrfToken))
			fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/submissions/%s/reject/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Delete</button></form></article>", esc(s.ID), esc(csrfToken))
		}
	})
}

func adminPreviewView(s hub.SubmittedEvent, csrfToken string) templ.Component {
	return page("Event Preview", func(w io.Writer) {
		fmt.Fprintf(w, "<h1>%s</h1>", esc(s.EventName))
		if s.Banner != "" {
			fmt.Fprintf(w, "<img src=%q alt=%q>", s.Banner, esc(s.EventName))
		}
		fmt.Fprintf(w, "<p>%s %s at %s, %s</p><p>%s</p>", esc(s.Date), esc(s.Time), esc(s.Venue), esc(s.Address), esc(s.Description))
		if s.RegistrationURL != "" {
			fmt.Fprintf(w, "<p><a href=%q>%s</a></p>", s.RegistrationURL, esc(s.RegistrationURL))
		}
		fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/submissions/%s/accept/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Accept &amp; Publish</button></form>", esc(s.ID), esc(csrfToken))
	})
}

func adminConfirmView(action string, s hub.SubmittedEvent, csrfToken string) templ.Component {
	titles := map[string]string{"accept": "Publish this event?", "reject": "Delete this submission?"}
	return page("Confirm", func(w io.Writer) {
		fmt.Fprintf(w, "<h1>%s</h1><p>%s</p>", esc(titles[action]), esc(s.EventName))
		fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/submissions/%s/%s/\"><input type=\"hidden\" name=\"_csrf\" value=%q><input type=\"hidden\" name=\"confirm\" value=\"yes\"><button>Confirm</button></form>", esc(s.ID), esc(action), esc(csrfToken))
		io.WriteString(w, "<a href=\"/admin/\">Cancel</a>")
	})
}

func adminTestimonialsView(items []hub.Testimonial, form hub.TestimonialForm, message, csrfToken string) templ.Component {
	return page("Testimonials", func(w io.Writer) {
		io.WriteString(w, "<h1>Testimonials</h1>")
		if message != "" {
			fmt.Fprintf(w, "<p role=\"status\">%s</p>", esc(message))
		}
		fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/testimonials/save/\" enctype=\"multipart/form-data\"><input type=\"hidden\" name=\"_csrf\" value=%q>", esc(csrfToken))
		fmt.Fprintf(w, "<input name=\"name\" value=%q placeholder=\"Name\"><input name=\"role\" value=%q placeholder=\"Role / Location\">", esc(form.Name), esc(form.Role))
		fmt.Fprintf(w, "<textarea name=\"text\" maxlength=\"%d\">%s</textarea>", hub.MaxTestimonialText, esc(form.Text))
		fmt.Fprintf(w, "<input name=\"twitterLink\" value=%q placeholder=\"X post link\"><input name=\"imageUrl\" value=%q placeholder=\"Image URL\">", esc(form.TwitterLink), esc(form.ImageURL))
		io.WriteString(w, "<input type=\"file\" name=\"image\"><button>Save</button></form>")
		for _, t := range items {
			fmt.Fprintf(w, "<article><blockquote>%s</blockquote><p>%s, %s</p>", esc(t.Text), esc(t.Name), esc(t.Role))
			fmt.Fprintf(w, "<form method=\"POST\" action=\"/admin/testimonials/%s/delete/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Delete</button></form></article>", esc(t.ID), esc(csrfToken))
		}
	})
}

func adminSubscribersView(subs []hub.NewsletterSubscriber, query, composeURL, csrfToken string) templ.Component {
	return page("Newsletter Subscribers", func(w io.Writer) {
		io.WriteString(w, "<h1>Newsletter Subscribers</h1>")
		fmt.Fprintf(w, "<form method=\"GET\"><input name=\"q\" value=%q placeholder=\"Search by email\"><button>Filter</button></form>", esc(query))
		fmt.Fprintf(w, "<p><a href=%q>Compose Email</a> <a href=\"/admin/subscribers/export?q=%s\">Export CSV</a></p>", composeURL, esc(query))
		io.WriteString(w, "<table><tr><th>Email</th><th>Subscribed</th><th></th></tr>")
		for _, s := range subs {
			fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td><form method=\"POST\" action=\"/admin/subscribers/%s/delete/\"><input type=\"hidden\" name=\"_csrf\" value=%q><button>Delete</button></form></td></tr>", esc(s.Email), esc(s.SubscribedAt), esc(s.ID), esc(csrfToken))
		}
		io.WriteString(w, "</table>")
	})
}

func notFoundView() templ.Component {
	return page("Not Found", func(w io.Writer) {
		io.WriteString(w, "<h1>404</h1><p>That page does not exist.</p>")
	})
}

func serverErrorView() templ.Component {
	return page("Server Error", func(w io.Writer) {
		io.WriteString(w, "<h1>500</h1><p>Something went wrong. Please try again.</p>")
	})
}
