package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// Deps bundles everything the router mounts
type Deps struct {
	DB         *gorm.DB
	Auth       *AuthHandler
	Onboarding *OnboardingHandler
	Articles   *ArticleHandler
	Contacts   *ContactHandler
	Carousel   *CarouselHandler
	Storage    *StorageHandler
	Health     *HealthHandler
	UploadsDir string
}

// NewRouter mounts the public, authenticated and admin route groups
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	// Public surface
	r.Get("/health", d.Health.Check)
	r.Get("/carousel/layout", d.Carousel.Layout)
	r.Get("/articles", d.Articles.List)
	r.Get("/articles/{slug}", d.Articles.GetBySlug)
	r.Post("/contact", d.Contacts.Submit)

	r.Post("/auth/login", d.Auth.Login)
	r.Post("/auth/otp/request", d.Auth.RequestOTP)
	r.Post("/auth/otp/login", d.Auth.LoginWithOTP)
	r.Post("/auth/password-reset/request", d.Auth.RequestPasswordReset)
	r.Post("/auth/password-reset/confirm", d.Auth.ConfirmPasswordReset)

	// Uploaded objects are public once stored.
	if d.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	// Signed-in clients
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(d.DB))

		r.Get("/me", d.Auth.Me)
		r.Get("/onboarding", d.Onboarding.State)
		r.Put("/onboarding/profile", d.Onboarding.SaveProfile)
		r.Put("/onboarding/questionnaire", d.Onboarding.SaveQuestionnaire)
		r.Put("/onboarding/consultation", d.Onboarding.SaveConsultation)
		r.Post("/onboarding/submit", d.Onboarding.Submit)
	})

	// Admin portal
	r.Route("/admin", func(r chi.Router) {
		r.Use(Authenticate(d.DB))
		r.Use(RequireAdmin)

		r.Get("/users", d.Auth.ListUsers)
		r.Post("/users", d.Auth.CreateUser)
		r.Get("/users/{id}", d.Auth.GetUser)
		r.Patch("/users/{id}", d.Auth.UpdateUser)
		r.Post("/users/{id}/activate", d.Auth.SetUserActive(true))
		r.Post("/users/{id}/deactivate", d.Auth.SetUserActive(false))

		r.Get("/applications", d.Onboarding.AdminList)
		r.Get("/applications/{userID}", d.Onboarding.AdminGet)
		r.Post("/applications/{userID}/approve", d.Onboarding.Approve)
		r.Post("/applications/{userID}/reject", d.Onboarding.Reject)
		r.Get("/applications/{userID}/checkin-qr", d.Onboarding.CheckInQR)

		r.Get("/articles", d.Articles.AdminList)
		r.Post("/articles", d.Articles.Create)
		r.Get("/articles/{id}", d.Articles.AdminGet)
		r.Put("/articles/{id}", d.Articles.Update)
		r.Delete("/articles/{id}", d.Articles.Delete)
		r.Post("/articles/{id}/reports", d.Articles.AddReport)
		r.Delete("/articles/{id}/reports/{reportID}", d.Articles.DeleteReport)

		r.Get("/inquiries", d.Contacts.AdminList)
		r.Get("/inquiries/export", d.Contacts.Export)
		r.Get("/inquiries/{id}", d.Contacts.AdminGet)
		r.Patch("/inquiries/{id}/status", d.Contacts.SetStatus)
		r.Post("/inquiries/{id}/notes", d.Contacts.AddNote)
		r.Delete("/inquiries/{id}/notes/{noteID}", d.Contacts.DeleteNote)
		r.Delete("/inquiries/{id}", d.Contacts.Delete)

		r.Post("/uploads", d.Storage.Upload)
		r.Delete("/uploads/{object}", d.Storage.Delete)
	})

	return r
}
