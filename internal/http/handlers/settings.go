package handlers

import (
	"net/http"

	"notifier/internal/infra/geoip"
	"notifier/internal/middleware"
)

// SettingsDefaults reports the locale and phone-country defaults the
// server resolved for this request, so clients can prefill forms.
func (a *App) SettingsDefaults(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	country := middleware.CountryFromContext(r.Context())

	callingCode := ""
	if country != "" {
		callingCode = geoip.CallingCode(country)
	}
	if callingCode == "" && a.GeoIP != nil {
		callingCode = geoip.CallingCodeForIP(a.GeoIP, middleware.ClientIP(r), "")
	}
	if callingCode == "" {
		callingCode = a.DefaultCountryCode
	}

	a.json(w, http.StatusOK, map[string]string{
		"locale":       locale,
		"country":      country,
		"calling_code": callingCode,
	})
}
