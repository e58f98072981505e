// Package communityhub is the engine behind a Bitcoin-adoption community
// site: public pages for events, news and testimonials, a community event
// submission form, and an admin dashboard for moderating submissions and
// curating testimonials and newsletter subscribers.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// communityhub handles the handler logic, middleware, document store, and
// media storage.
package communityhub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afribit/communityhub/blobstore"
	"github.com/afribit/communityhub/docstore"
)

// ViewFuncs holds user-provided templ components that the engine calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home              func(events []PublishedEvent, posts []NewsPost, testimonials []Testimonial, siteURL string) templ.Component
	Community         func(events []PublishedEvent, query string, csrfToken string) templ.Component
	EventList         func(events []PublishedEvent, query string) templ.Component
	EventDetail       func(event PublishedEvent, siteURL string) templ.Component
	SubmitForm        func(form EventForm, message string, csrfToken string) templ.Component
	NewsIndex         func(posts []NewsPost) templ.Component
	NewsArticle       func(post NewsPost, body templ.Component) templ.Component
	AdminLogin        func(showError bool, csrfToken string) templ.Component
	AdminDashboard    func(pending []SubmittedEvent, message string, csrfToken string) templ.Component
	AdminPreview      func(sub SubmittedEvent, csrfToken string) templ.Component
	AdminConfirm      func(action string, sub SubmittedEvent, csrfToken string) templ.Component
	AdminTestimonials func(items []Testimonial, form TestimonialForm, message string, csrfToken string) templ.Component
	AdminSubscribers  func(subs []NewsletterSubscriber, query string, composeURL string, csrfToken string) templ.Component
	NotFound          func() templ.Component
	ServerError       func() templ.Component
}

// App is the central communityhub application. It wires together the
// stores, services, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Views  ViewFuncs

	Docs         *docstore.Store
	Media        *blobstore.Store
	Submissions  *Submissions
	Testimonials *Testimonials
	Subscribers  *Subscribers
	Events       *docCache[PublishedEvent]
	News         *docCache[NewsPost]

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new communityhub App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, services, middleware, and routes, then
// starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("communityhub: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("communityhub: SessionSecret is required")
	}

	docs, err := docstore.New(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("communityhub: init document store: %w", err)
	}
	a.Docs = docs

	media, err := blobstore.New(a.Config.MediaDir, a.Config.URL+"/media")
	if err != nil {
		return fmt.Errorf("communityhub: init media store: %w", err)
	}
	a.Media = media

	a.Events = newDocCache(func() ([]PublishedEvent, error) {
		return ListPublishedEvents(a.Docs)
	}, a.Config.FeedCacheTTL)
	a.News = newDocCache(func() ([]NewsPost, error) {
		return ListNews(a.Docs)
	}, a.Config.FeedCacheTTL)

	a.Submissions = NewSubmissions(a.Docs, a.Media, a.Events)
	a.Testimonials = NewTestimonials(a.Docs, a.Media)
	a.Subscribers = NewSubscribers(a.Docs)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static assets and uploaded media
	e.Static("/public", a.staticDir)
	e.Static("/media", a.Media.Dir())
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/community/", a.handleCommunity)
	e.GET("/community/events/:id/", a.handleEventDetail)
	e.GET("/community/submit/", a.handleSubmitForm)
	e.POST("/community/submit/", a.handleSubmitEvent)
	e.GET("/news/", a.handleNewsIndex)
	e.GET("/news/:slug/", a.handleNewsPost)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/submissions/refresh/", a.handleSubmissionsRefresh)
	e.GET("/admin/submissions/:id/", a.handleSubmissionPreview)
	e.POST("/admin/submissions/:id/accept/", a.handleSubmissionAccept)
	e.POST("/admin/submissions/:id/reject/", a.handleSubmissionReject)
	e.GET("/admin/testimonials/", a.handleAdminTestimonials)
	e.POST("/admin/testimonials/save/", a.handleTestimonialSave)
	e.POST("/admin/testimonials/:id/delete/", a.handleTestimonialDelete)
	e.GET("/admin/subscribers/", a.handleAdminSubscribers)
	e.GET("/admin/subscribers/export", a.handleSubscriberExport)
	e.POST("/admin/subscribers/:id/delete/", a.handleSubscriberDelete)

	metricsHandler := echo.WrapHandler(promhttp.Handler())
	e.GET("/admin/metrics", func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/")
		}
		return metricsHandler(c)
	})
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Docs != nil {
		return a.Docs.Close()
	}
	return nil
}
