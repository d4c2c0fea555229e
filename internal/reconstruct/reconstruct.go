// Package reconstruct rebuilds paragraph and sentence structure in text
// extracted from PDF or Word documents. Extraction tools emit hard line
// breaks at visual line boundaries, repeat running headers and footers,
// leave hyphenated words split across lines, and interleave citation
// markers and line numbers with the prose. Reconstruct applies a fixed
// sequence of rule-based repairs: strip headers and footers, collapse
// duplicated phrases, remove citation markers and line-number prefixes,
// rejoin hyphenated words and broken sentences, and normalise whitespace.
// The steps always run in that order so later rules see the output of
// earlier ones, and the whole pass is idempotent.
package reconstruct

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reconstructor applies the rule-based cleaning pass. The zero value is not
// usable; construct with New.
type Reconstructor struct {
	extraLabels  []string
	collapseCJK  bool
	headerFooter *regexp.Regexp
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithExtraLabels adds literal section-label phrases to the header/footer
// pattern, for example a journal's running head. Phrases are matched
// case-insensitively at the start of a line; regex metacharacters in them
// carry no special meaning.
func WithExtraLabels(labels ...string) Option {
	return func(r *Reconstructor) {
		r.extraLabels = append(r.extraLabels, labels...)
	}
}

// WithCJKSpaceCollapse enables removal of spurious spaces between Han
// characters. Off by default because it is wrong for texts that use spaces
// as intentional CJK word separators.
func WithCJKSpaceCollapse() Option {
	return func(r *Reconstructor) {
		r.collapseCJK = true
	}
}

// New builds a Reconstructor with the given options.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{}
	for _, opt := range opts {
		opt(r)
	}
	r.headerFooter = buildHeaderFooterPattern(r.extraLabels)
	return r
}

// Reconstruct runs the full cleaning sequence over raw extracted text and
// returns the repaired text. Empty input yields empty output.
func (r *Reconstructor) Reconstruct(raw string) string {
	text := normalizeNewlines(raw)

	text = r.headerFooter.ReplaceAllString(text, "")
	text = collapseDuplicatePhrases(text)
	text = citationRe.ReplaceAllString(text, "")
	text = lineNumberRe.ReplaceAllString(text, "")
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = rejoinLines(text)
	if r.collapseCJK {
		text = collapseCJKGaps(text)
	}
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// rejoinLines merges lines broken mid-sentence. A line that is not a
// complete thought is carried forward and prepended to the next line,
// unless the next line is blank or starts a list item; the carry chains
// until a merged line completes a thought. A trailing incomplete line is
// kept as-is.
func rejoinLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	carry := ""
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if carry != "" {
			s = carry + " " + s
			line = s
			carry = ""
		}
		if s == "" || isCompleteThought(s) {
			out = append(out, line)
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !listItemRe.MatchString(next) {
				carry = s
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// token records the byte span of a whitespace-delimited token.
type token struct {
	start, end int
}

func splitTokens(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{start, i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start, len(text)})
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// collapseDuplicatePhrases removes the second copy of an immediately
// repeated phrase, keeping one: "Foreword Foreword" becomes "Foreword" and
// "the cat the cat sat" becomes "the cat sat". This is hand-written because
// Go's RE2 engine does not support backreferences. A phrase is a run of
// whitespace-delimited tokens whose text repeats exactly; the run must
// start and end on a word character, so "end. end." is left alone, and the
// first copy must not span a line break. Scanning is a single left-to-right
// pass that resumes after each removed copy, so "a a a" collapses to "a a".
func collapseDuplicatePhrases(text string) string {
	tokens := splitTokens(text)
	if len(tokens) < 2 {
		return text
	}
	var out strings.Builder
	lastEmit := 0
	ti := 0
	for ti < len(tokens) {
		matched := false
		maxRun := (len(tokens) - ti) / 2
		for n := 1; n <= maxRun; n++ {
			first := text[tokens[ti].start:tokens[ti+n-1].end]
			second := text[tokens[ti+n].start:tokens[ti+2*n-1].end]
			if first != second || strings.Contains(first, "\n") {
				continue
			}
			head, _ := utf8.DecodeRuneInString(first)
			tail, _ := utf8.DecodeLastRuneInString(first)
			if !isWordRune(head) || !isWordRune(tail) {
				continue
			}
			out.WriteString(text[lastEmit:tokens[ti+n-1].end])
			lastEmit = tokens[ti+2*n-1].end
			ti += 2 * n
			matched = true
			break
		}
		if !matched {
			ti++
		}
	}
	out.WriteString(text[lastEmit:])
	return out.String()
}

// collapseCJKGaps removes spaces between Han characters, iterating until
// stable because each replacement consumes both characters and a run like
// "中 文 字" needs multiple passes.
func collapseCJKGaps(text string) string {
	for {
		next := cjkGapRe.ReplaceAllString(text, "$1$2")
		if next == text {
			return next
		}
		text = next
	}
}
