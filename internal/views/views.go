// Package views renders the few server-side pages of the site. The pages
// are templ components; run `templ generate` after editing a .templ file.
package views

import (
	"net/url"
	"strconv"

	"arogyam-go/internal/models"

	"github.com/a-h/templ"
)

// SupportEmail receives reports from the recovery screen.
const SupportEmail = "support@arogyam.example"

// Page carries what the layout needs from the request. BodyClass is the
// applied performance flag set.
type Page struct {
	Title     string
	BodyClass string
	CSRFToken string
	Nonce     string
}

func consultationSummary(t models.ConsultationType) string {
	mode := "In clinic"
	if t.Online {
		mode = "Online"
	}
	return strconv.Itoa(t.Minutes) + " min · ₹" + strconv.Itoa(t.Fee) + " · " + mode
}

func reportURL(correlationID string) templ.SafeURL {
	return templ.URL("mailto:" + SupportEmail + "?subject=" + url.QueryEscape("Error report "+correlationID))
}
