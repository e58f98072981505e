package communityhub

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	msgGone = "That submission is no longer available."
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleSubmissionPreview(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	sub, err := a.Submissions.Preview(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrGone) {
			return a.renderAdminDashboard(c, msgGone)
		}
		return err
	}
	return Render(c, a.Views.AdminPreview(sub, CsrfToken(c)))
}

// handleSubmissionAccept publishes a submission. The first POST (without
// confirm) renders the confirmation step; the confirmed POST executes the
// move.
func (a *App) handleSubmissionAccept(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	if c.FormValue("confirm") != "yes" {
		sub, err := a.Submissions.Preview(id)
		if err != nil {
			if errors.Is(err, ErrGone) {
				return a.renderAdminDashboard(c, msgGone)
			}
			return err
		}
		return Render(c, a.Views.AdminConfirm("accept", sub, CsrfToken(c)))
	}
	if _, err := a.Submissions.Accept(id); err != nil {
		if errors.Is(err, ErrGone) {
			return a.renderAdminDashboard(c, msgGone)
		}
		c.Logger().Errorf("accept submission %s: %v", id, err)
		return a.renderAdminDashboard(c, "Failed to publish event. Please try again.")
	}
	return a.renderAdminDashboard(c, "Event published.")
}

func (a *App) handleSubmissionReject(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	if c.FormValue("confirm") != "yes" {
		sub, err := a.Submissions.Preview(id)
		if err != nil {
			if errors.Is(err, ErrGone) {
				return a.renderAdminDashboard(c, msgGone)
			}
			return err
		}
		return Render(c, a.Views.AdminConfirm("reject", sub, CsrfToken(c)))
	}
	if err := a.Submissions.Reject(id); err != nil {
		if errors.Is(err, ErrGone) {
			return a.renderAdminDashboard(c, msgGone)
		}
		c.Logger().Errorf("reject submission %s: %v", id, err)
		return a.renderAdminDashboard(c, "Failed to delete submission.")
	}
	return a.renderAdminDashboard(c, "Submission deleted.")
}

func (a *App) handleSubmissionsRefresh(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Submissions.Refresh(); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	pending, err := a.Submissions.Pending()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(pending, msg, CsrfToken(c)))
}

func (a *App) handleAdminTestimonials(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderAdminTestimonials(c, TestimonialForm{}, c.QueryParam("msg"))
}

// handleTestimonialSave creates or updates depending on whether the form
// carries an id.
func (a *App) handleTestimonialSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form := TestimonialForm{
		Name:        c.FormValue("name"),
		Role:        c.FormValue("role"),
		Text:        c.FormValue("text"),
		TwitterLink: c.FormValue("twitterLink"),
		ImageURL:    c.FormValue("imageUrl"),
	}
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxUploadSize {
			return a.renderAdminTestimonials(c, form, "Image too large (max 10MB).")
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		form.ImageFile = src
	}

	id := c.FormValue("id")
	var err error
	if id == "" {
		_, err = a.Testimonials.Create(form)
	} else {
		_, err = a.Testimonials.Update(id, form)
	}
	if err != nil {
		var missing *MissingFieldError
		switch {
		case errors.As(err, &missing):
			return a.renderAdminTestimonials(c, form, "Please fill in name, role and text.")
		case errors.Is(err, ErrTextTooLong):
			return a.renderAdminTestimonials(c, form, "Testimonial text is too long (280 characters max).")
		case errors.Is(err, ErrBadTwitterLink):
			return a.renderAdminTestimonials(c, form, "Enter a valid Twitter/X post link (twitter.com or x.com).")
		case errors.Is(err, ErrGone):
			return a.renderAdminTestimonials(c, TestimonialForm{}, "That testimonial no longer exists.")
		default:
			c.Logger().Errorf("save testimonial: %v", err)
			return a.renderAdminTestimonials(c, form, "Error saving testimonial. Please try again.")
		}
	}
	return c.Redirect(http.StatusSeeOther, "/admin/testimonials/?msg=Saved.")
}

func (a *App) handleTestimonialDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Testimonials.Delete(c.Param("id")); err != nil {
		if errors.Is(err, ErrGone) {
			return a.renderAdminTestimonials(c, TestimonialForm{}, "That testimonial no longer exists.")
		}
		c.Logger().Errorf("delete testimonial: %v", err)
		return a.renderAdminTestimonials(c, TestimonialForm{}, "Error deleting testimonial.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/testimonials/?msg=Deleted.")
}

func (a *App) renderAdminTestimonials(c echo.Context, form TestimonialForm, msg string) error {
	items, err := a.Testimonials.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminTestimonials(items, form, msg, CsrfToken(c)))
}

func (a *App) handleAdminSubscribers(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	subs, err := a.Subscribers.List()
	if err != nil {
		return err
	}
	query := c.QueryParam("q")
	visible := FilterSubscribers(subs, query)
	selected := FilterEmpty(c.Request().URL.Query()["selected"])
	composeURL := ComposeURL(Recipients(selected, visible))
	return Render(c, a.Views.AdminSubscribers(visible, query, composeURL, CsrfToken(c)))
}

func (a *App) handleSubscriberDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Subscribers.Delete(c.Param("id")); err != nil && !errors.Is(err, ErrGone) {
		c.Logger().Errorf("delete subscriber: %v", err)
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/subscribers/")
}

// handleSubscriberExport streams a CSV of the explicit selection, or of
// everyone matching the current filter when nothing is selected.
func (a *App) handleSubscriberExport(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	subs, err := a.Subscribers.List()
	if err != nil {
		return err
	}
	visible := FilterSubscribers(subs, c.QueryParam("q"))
	selected := FilterEmpty(c.Request().URL.Query()["selected"])
	recipients := Recipients(selected, visible)

	filename := "newsletter_subscribers_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return WriteCSV(c.Response(), recipients)
}
