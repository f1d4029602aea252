package domain

import "testing"

func TestNextRoute(t *testing.T) {
	cases := []struct {
		name string
		app  *OnboardingApplication
		want Route
	}{
		{"no record", nil, RouteWelcome},
		{"empty draft", &OnboardingApplication{Status: StatusDraft}, RouteWelcome},
		{"draft with profile content", &OnboardingApplication{Status: StatusDraft, Name: "Ada"}, RouteOnboarding},
		{"draft with only consultation set", &OnboardingApplication{Status: StatusDraft, ConsultationType: "video"}, RouteOnboarding},
		{"submitted", &OnboardingApplication{Status: StatusSubmitted, Name: "Ada"}, RoutePending},
		{"pending", &OnboardingApplication{Status: StatusPending, Name: "Ada"}, RoutePending},
		{"approved", &OnboardingApplication{Status: StatusApproved, Name: "Ada"}, RouteDashboard},
	}
	for _, tc := range cases {
		if got := NextRoute(tc.app); got != tc.want {
			t.Errorf("%s: NextRoute = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestConsultationComplete(t *testing.T) {
	app := &OnboardingApplication{}
	if app.ConsultationComplete() {
		t.Error("empty consultation reported complete")
	}
	app.ConsultationType = "in_person"
	app.ConsultationDate = "2026-09-15"
	if app.ConsultationComplete() {
		t.Error("consultation without a time reported complete")
	}
	app.ConsultationTime = "14:30"
	if !app.ConsultationComplete() {
		t.Error("fully scheduled consultation reported incomplete")
	}
	app.ConsultationDate = "   "
	if app.ConsultationComplete() {
		t.Error("whitespace-only date reported complete")
	}
}

func TestHasProfileContentIgnoresWhitespace(t *testing.T) {
	app := &OnboardingApplication{Name: "  ", Address: "\t"}
	if app.HasProfileContent() {
		t.Error("whitespace-only fields counted as content")
	}
}
