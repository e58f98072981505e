package communityhub

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afribit/communityhub/markdown"
)

func (a *App) handleHome(c echo.Context) error {
	events, err := a.Events.Items()
	if err != nil {
		return err
	}
	posts, err := a.News.Items()
	if err != nil {
		return err
	}
	testimonials, err := a.Testimonials.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(events, posts, testimonials, a.Config.URL))
}

func (a *App) handleCommunity(c echo.Context) error {
	query := c.QueryParam("q")
	events, err := a.Events.Items()
	if err != nil {
		return err
	}
	events = FilterEvents(events, query)
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "events" {
		return Render(c, a.Views.EventList(events, query))
	}
	return Render(c, a.Views.Community(events, query, CsrfToken(c)))
}

func (a *App) handleEventDetail(c echo.Context) error {
	events, err := a.Events.Items()
	if err != nil {
		return err
	}
	id := c.Param("id")
	for _, e := range events {
		if e.ID == id {
			return Render(c, a.Views.EventDetail(e, a.Config.URL))
		}
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

func (a *App) handleSubmitForm(c echo.Context) error {
	return Render(c, a.Views.SubmitForm(EventForm{}, "", CsrfToken(c)))
}

// handleSubmitEvent accepts a public event submission. Validation failures
// and store errors re-render the form with the submitted values intact so
// the visitor can retry; success redirects with a clean form.
func (a *App) handleSubmitEvent(c echo.Context) error {
	form := EventForm{
		EventName:       c.FormValue("eventName"),
		Venue:           c.FormValue("venue"),
		Address:         c.FormValue("address"),
		Date:            c.FormValue("date"),
		Time:            c.FormValue("time"),
		Description:     c.FormValue("description"),
		RegistrationURL: c.FormValue("registrationUrl"),
		BannerURL:       c.FormValue("bannerUrl"),
	}

	if file, err := c.FormFile("banner"); err == nil {
		if file.Size > maxUploadSize {
			return Render(c, a.Views.SubmitForm(form, "Banner image too large (max 10MB).", CsrfToken(c)))
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		form.BannerFile = src
	}

	if _, err := a.Submissions.Submit(form); err != nil {
		var missing *MissingFieldError
		switch {
		case errors.As(err, &missing):
			return Render(c, a.Views.SubmitForm(form, "Please fill in all required fields.", CsrfToken(c)))
		default:
			c.Logger().Errorf("submit event: %v", err)
			return Render(c, a.Views.SubmitForm(form, "Failed to submit event. Please try again.", CsrfToken(c)))
		}
	}
	return c.Redirect(http.StatusSeeOther, "/community/?submitted=1")
}

func (a *App) handleNewsIndex(c echo.Context) error {
	posts, err := a.News.Items()
	if err != nil {
		return err
	}
	return Render(c, a.Views.NewsIndex(posts))
}

func (a *App) handleNewsPost(c echo.Context) error {
	posts, err := a.News.Items()
	if err != nil {
		return err
	}
	post, err := FindNewsPost(posts, c.Param("slug"))
	if err != nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.NewsArticle(post, markdown.Markdown(post.Body)))
}

func (a *App) handleSitemap(c echo.Context) error {
	events, err := a.Events.Items()
	if err != nil {
		return err
	}
	posts, err := a.News.Items()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, events, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	events, err := a.Events.Items()
	if err != nil {
		return err
	}
	posts, err := a.News.Items()
	if err != nil {
		return err
	}
	return a.renderFeed(c, events, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
