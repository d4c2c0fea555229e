// Package validator guards against repairs that destroy text instead of
// fixing it.
package validator

import (
	"fmt"
	"strings"

	"github.com/docpolish/docpolish/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and skip the check.
const minValidationLength = 20

// shrinkRatio is the fraction of the original length below which a repair is
// treated as having destroyed the text.
const shrinkRatio = 0.1

// minShrinkCheckRunes is the original length under which the shrink check is
// skipped; a legitimate repair of a short chunk can shed most of its bytes.
const minShrinkCheckRunes = 200

// Validator checks that a repaired chunk is still usable as a replacement
// for its original. The underlying language detector is expensive to build;
// reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// CheckRepair returns an error when the repaired text cannot replace the
// original: it is empty, it shrank to under 10% of a long original, or its
// detected language flipped. A nil error means the repair is acceptable,
// not that it is good.
func (v *Validator) CheckRepair(original, repaired string) error {
	orig := strings.TrimSpace(original)
	rep := strings.TrimSpace(repaired)

	if rep == "" {
		return fmt.Errorf("repair is empty")
	}

	origRunes := len([]rune(orig))
	repRunes := len([]rune(rep))
	if origRunes >= minShrinkCheckRunes && float64(repRunes) < shrinkRatio*float64(origRunes) {
		return fmt.Errorf("repair shrank text from %d to %d runes", origRunes, repRunes)
	}

	// Language detection is unreliable for very short texts; skip the check.
	if origRunes < minValidationLength || repRunes < minValidationLength {
		return nil
	}
	origLang, ok := v.det.DetectISO(orig)
	if !ok {
		return nil
	}
	repLang, ok := v.det.DetectISO(rep)
	if !ok {
		return nil
	}
	if !strings.EqualFold(origLang, repLang) {
		return fmt.Errorf("repair changed language from %s to %s", origLang, repLang)
	}

	return nil
}
