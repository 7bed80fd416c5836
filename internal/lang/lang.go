package lang

import "strings"

// Language is one entry of the language picker.
type Language struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	SpeechLocale string `json:"speech_locale"`
}

// DefaultCode is used whenever no valid language has been selected.
const DefaultCode = "en"

var supported = []Language{
	{Code: "en", Name: "English", NativeName: "English", SpeechLocale: "en-IN"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", SpeechLocale: "hi-IN"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা", SpeechLocale: "bn-IN"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు", SpeechLocale: "te-IN"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी", SpeechLocale: "mr-IN"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", SpeechLocale: "ta-IN"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو", SpeechLocale: "ur-IN"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", SpeechLocale: "gu-IN"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ", SpeechLocale: "kn-IN"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം", SpeechLocale: "ml-IN"},
	{Code: "or", Name: "Odia", NativeName: "ଓଡ଼ିଆ", SpeechLocale: "or-IN"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ", SpeechLocale: "pa-IN"},
	{Code: "as", Name: "Assamese", NativeName: "অসমীয়া", SpeechLocale: "as-IN"},
	{Code: "mai", Name: "Maithili", NativeName: "मैथिली", SpeechLocale: "hi-IN"},
	{Code: "sa", Name: "Sanskrit", NativeName: "संस्कृतम्", SpeechLocale: "sa-IN"},
	{Code: "ks", Name: "Kashmiri", NativeName: "कॉशुर", SpeechLocale: "ur-IN"},
	{Code: "ne", Name: "Nepali", NativeName: "नेपाली", SpeechLocale: "ne-NP"},
	{Code: "sd", Name: "Sindhi", NativeName: "سنڌي", SpeechLocale: "ur-IN"},
	{Code: "kok", Name: "Konkani", NativeName: "कोंकणी", SpeechLocale: "mr-IN"},
	{Code: "doi", Name: "Dogri", NativeName: "डोगरी", SpeechLocale: "hi-IN"},
	{Code: "mni", Name: "Manipuri", NativeName: "ꯃꯤꯇꯩꯂꯣꯟ", SpeechLocale: "bn-IN"},
	{Code: "brx", Name: "Bodo", NativeName: "बड़ो", SpeechLocale: "hi-IN"},
	{Code: "sat", Name: "Santali", NativeName: "ᱥᱟᱱᱛᱟᱲᱤ", SpeechLocale: "hi-IN"},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(supported))
	for _, l := range supported {
		m[l.Code] = l
	}
	return m
}()

// All returns the supported languages in picker order.
func All() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Lookup finds a language by its code. Codes are matched case-insensitively
// and a region suffix ("hi-IN") is ignored.
func Lookup(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	l, ok := byCode[code]
	return l, ok
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// SpeechLocale returns the recognition locale for code, falling back to the
// default language.
func SpeechLocale(code string) string {
	if l, ok := Lookup(code); ok {
		return l.SpeechLocale
	}
	return byCode[DefaultCode].SpeechLocale
}
