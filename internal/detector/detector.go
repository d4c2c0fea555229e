package detector

import (
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Detector identifies the primary language of a text span. Building the
// underlying lingua detector is expensive; construct once and reuse.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// hanScanLimit bounds how far HasHan looks into the text. Documents are
// routinely megabytes; the opening runes are enough to tell.
const hanScanLimit = 1000

// HasHan reports whether the first hanScanLimit runes contain a Han
// character. It is a cheap check used to decide whether CJK-specific
// cleanup applies, without paying for full statistical detection.
func HasHan(text string) bool {
	seen := 0
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
		seen++
		if seen >= hanScanLimit {
			break
		}
	}
	return false
}
