package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"}, // success, failure
	)

	onboardingSubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Total number of onboarding applications submitted",
		},
	)

	onboardingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_decisions_total",
			Help: "Total number of admin decisions on applications",
		},
		[]string{"decision"}, // approved, rejected
	)

	contactSubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions",
		},
	)

	contactExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_exports_total",
			Help: "Total number of contact inquiry CSV exports",
		},
	)

	articleReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_reads_total",
			Help: "Total number of public article reads",
		},
		[]string{"language"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"status"}, // success, failure
	)

	otpGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_generated_total",
			Help: "Total number of OTP codes generated",
		},
		[]string{"method"}, // email, sms
	)

	otpVerifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verified_total",
			Help: "Total number of OTP verifications",
		},
		[]string{"status"}, // success, failure
	)
)

// PrometheusMiddleware creates a middleware that records Prometheus metrics
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, statusCode).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, statusCode).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(wrapped.size))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordAuthAttempt records an authentication attempt
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordOnboardingSubmission records a submitted onboarding application
func RecordOnboardingSubmission() {
	onboardingSubmissionsTotal.Inc()
}

// RecordOnboardingDecision records an admin approve/reject decision
func RecordOnboardingDecision(decision string) {
	onboardingDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordContactSubmission records a new contact form submission
func RecordContactSubmission() {
	contactSubmissionsTotal.Inc()
}

// RecordContactExport records a contact inquiry CSV export
func RecordContactExport() {
	contactExportsTotal.Inc()
}

// RecordArticleRead records a public article read
func RecordArticleRead(language string) {
	articleReadsTotal.WithLabelValues(language).Inc()
}

// RecordUpload records a file upload
func RecordUpload(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	uploadsTotal.WithLabelValues(status).Inc()
}

// RecordOTPGenerated records OTP generation
func RecordOTPGenerated(method string) {
	otpGeneratedTotal.WithLabelValues(method).Inc()
}

// RecordOTPVerified records OTP verification
func RecordOTPVerified(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	otpVerifiedTotal.WithLabelValues(status).Inc()
}
