package summarize

import "unicode"

// Language codes returned by DetectLanguage.
const (
	LangRussian = "ru"
	LangEnglish = "en"
	LangOther   = "other"
)

// DetectLanguage guesses the dominant language of text by character
// class ratios: above 30% Cyrillic letters means Russian, above 50%
// Latin letters means English, anything else is reported as other.
func DetectLanguage(text string) string {
	var cyrillic, latin, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if letters == 0 {
		return LangOther
	}

	if float64(cyrillic)/float64(letters) > 0.3 {
		return LangRussian
	}
	if float64(latin)/float64(letters) > 0.5 {
		return LangEnglish
	}
	return LangOther
}
