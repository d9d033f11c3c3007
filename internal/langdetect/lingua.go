package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter language code detected in text, or ""
// when the sample is too short or ambiguous. The detector is built over the
// languages a feed item in this module can plausibly carry; everything else
// still classifies as an unknown code and falls through to "other".
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.Polish,
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Ukrainian,
				lingua.Russian,
			).
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
