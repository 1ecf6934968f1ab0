package web

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/Akshith040/EcoScan1/internal/domain"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.85, "85.00%"},
		{0.98, "98.00%"},
		{0.9234, "92.34%"},
		{1, "100.00%"},
		{0, "0.00%"},
	}
	for _, tt := range tests {
		if got := percent(tt.in); got != tt.want {
			t.Errorf("percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGuideURL(t *testing.T) {
	if got := guideURL(" Plastic Bottle "); got != "/guide/Plastic%20Bottle" {
		t.Errorf("guideURL() = %q", got)
	}
	if got := guideURL("Glass/Jar"); got != "/guide/Glass%2FJar" {
		t.Errorf("guideURL() = %q", got)
	}
}

func TestNewHistoryItemPhotoURL(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.HistoryEntry
		want  string
	}{
		{"stored photo", domain.HistoryEntry{ID: "e1", ImageKey: "u/p.jpg", ImageURL: "https://x/y.jpg"}, "/history/e1/photo"},
		{"https url", domain.HistoryEntry{ID: "e2", ImageURL: "https://cdn.example.com/a.png"}, "https://cdn.example.com/a.png"},
		{"blob url", domain.HistoryEntry{ID: "e3", ImageURL: "blob:http://localhost/abc"}, ""},
		{"none", domain.HistoryEntry{ID: "e4"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			if got := newHistoryItem(&e).PhotoURL; got != tt.want {
				t.Errorf("PhotoURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewHistoryItemSteps(t *testing.T) {
	item := newHistoryItem(&domain.HistoryEntry{RecyclingInstructions: "1. Rinse\n2. Recycle"})
	if len(item.Steps) != 2 || item.Steps[1].Number != 2 || item.Steps[1].Text != "Recycle" {
		t.Errorf("Steps = %+v", item.Steps)
	}
}

func TestAuthErrorMessage(t *testing.T) {
	if got := authErrorMessage("CredentialsSignin"); got != "The email or password you entered is incorrect." {
		t.Errorf("authErrorMessage() = %q", got)
	}
	if got := authErrorMessage("no-such-code"); got != authErrorMessages["default"] {
		t.Errorf("authErrorMessage() = %q", got)
	}
}

func TestSignupErrorMessage(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	tests := []struct {
		name string
		form signupForm
		want string
	}{
		{"bad email", signupForm{Email: "nope", Password: "longenough"}, "Please enter a valid email address."},
		{"short password", signupForm{Email: "a@b.co", Password: "short"}, "Password must be at least 8 characters."},
		{"long name", signupForm{Name: strings.Repeat("n", 101), Email: "a@b.co", Password: "longenough"}, "Name must be at most 100 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := signupErrorMessage(err); got != tt.want {
				t.Errorf("signupErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
	if err := v.Struct(signupForm{Email: "a@b.co", Password: "longenough"}); err != nil {
		t.Errorf("valid form rejected: %v", err)
	}
}
