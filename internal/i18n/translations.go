// Package i18n provides user-facing message translation for banners and
// camera errors. Translations are plain maps; unknown keys fall back to
// English, and a key missing everywhere is returned as-is so a typo is
// visible instead of silent.
package i18n

import "strings"

const defaultLocale = "en"

var translations = map[string]map[string]string{
	"en": {
		"errors.camera.permission_denied":       "Camera access was denied. Allow camera permissions and try again.",
		"errors.camera.device_not_found":        "No camera was found on this device.",
		"errors.camera.device_busy":             "The camera is in use by another application.",
		"errors.camera.constraints_unsupported": "The selected camera does not support the requested settings.",
		"errors.camera.unknown":                 "The camera could not be started.",
		"errors.camera_enumeration_failed":      "Available cameras could not be listed.",
		"errors.detection_failed":               "Barcode detection failed: {reason}",
		"errors.required_fields":                "Name and brand are required.",
		"errors.no_todo_service":                "No to-do list service is available.",
		"errors.add_failed":                     "Could not add the item to the list.",
		"errors.item_update_failed":             "Could not update the item on the list.",
		"errors.lookup_failed":                  "Product lookup failed.",
		"success.added_item":                    "Added {name} to the list.",
	},
	"sv": {
		"errors.camera.permission_denied":       "Kameraåtkomst nekades. Tillåt kamerabehörighet och försök igen.",
		"errors.camera.device_not_found":        "Ingen kamera hittades på den här enheten.",
		"errors.camera.device_busy":             "Kameran används av ett annat program.",
		"errors.camera.constraints_unsupported": "Den valda kameran stöder inte de begärda inställningarna.",
		"errors.camera.unknown":                 "Kameran kunde inte startas.",
		"errors.camera_enumeration_failed":      "Tillgängliga kameror kunde inte listas.",
		"errors.detection_failed":               "Streckkodsavläsningen misslyckades: {reason}",
		"errors.required_fields":                "Namn och varumärke krävs.",
		"errors.no_todo_service":                "Ingen inköpslista är tillgänglig.",
		"errors.add_failed":                     "Varan kunde inte läggas till i listan.",
		"errors.item_update_failed":             "Varan på listan kunde inte uppdateras.",
		"errors.lookup_failed":                  "Produktuppslaget misslyckades.",
		"success.added_item":                    "La till {name} i listan.",
	},
}

// Translator resolves message keys for a fixed locale.
type Translator struct {
	locale string
}

// New returns a Translator for the given locale. Unsupported locales fall
// back to English key by key, not wholesale, so partial translations work.
func New(locale string) *Translator {
	return &Translator{locale: normalize(locale)}
}

// Translate resolves key and interpolates {var} placeholders from vars.
func (t *Translator) Translate(key string, vars map[string]string) string {
	msg, ok := translations[t.locale][key]
	if !ok {
		msg, ok = translations[defaultLocale][key]
	}
	if !ok {
		return key
	}
	for name, value := range vars {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}

// Locales lists the supported locale codes.
func Locales() []string {
	locales := make([]string, 0, len(translations))
	for locale := range translations {
		locales = append(locales, locale)
	}
	return locales
}

func normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	// "sv-SE" selects the "sv" table
	if base, _, ok := strings.Cut(locale, "-"); ok {
		locale = base
	}
	if _, ok := translations[locale]; !ok {
		return defaultLocale
	}
	return locale
}
