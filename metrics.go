package communityhub

import "github.com/prometheus/client_golang/prometheus"

var (
	metricSubmissionsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communityhub_event_submissions_total",
		Help: "Community event submissions accepted into the pending queue.",
	})
	metricEventsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communityhub_events_published_total",
		Help: "Pending submissions published to the public events collection.",
	})
	metricSubmissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communityhub_submissions_rejected_total",
		Help: "Pending submissions rejected and deleted by a moderator.",
	})
	metricTestimonialsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communityhub_testimonials_saved_total",
		Help: "Testimonials created or updated through the dashboard.",
	})
	metricSubscribersRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communityhub_subscribers_removed_total",
		Help: "Newsletter subscribers removed through the dashboard.",
	})
)

func init() {
	prometheus.MustRegister(
		metricSubmissionsReceived,
		metricEventsPublished,
		metricSubmissionsRejected,
		metricTestimonialsSaved,
		metricSubscribersRemoved,
	)
}
