package reconstruct

import (
	"regexp"
	"strings"
)

// defaultLabels are section-label phrases stripped wherever they start a
// line. The set covers the English and Chinese academic boilerplate seen in
// scanned-paper corpora; callers add venue-specific phrases (running heads,
// journal names) through WithExtraLabels.
var defaultLabels = []string{
	"Abstract:",
	"Keywords:",
	"DOI:",
	"Article ID:",
	"Received:",
	"Biography:",
	"摘要:",
	"关键词:",
	"中图分类号:",
	"文章编号:",
	"收稿日期:",
	"作者简介:",
	"参考文献:",
}

// buildHeaderFooterPattern compiles the line-anchored header/footer
// alternation: standalone page numbers, dot-leader TOC lines, journal
// boilerplate, bare URLs, DOI strings, copyright lines, running folios,
// circled-digit footnote lines, volume markers, and the label phrases.
// Character classes stay within [ \t] so no alternative can cross a line
// break.
func buildHeaderFooterPattern(extraLabels []string) *regexp.Regexp {
	alts := []string{
		`[ \t]*\d+(?:[ \t]+\d+)*[ \t]*$`,
		`.*\.{2,}[ \t]*\d+[ \t]*$`,
		`(?:journal of|proceedings of|transactions on|review of|advances in) .*`,
		`page \d+ of \d+[ \t]*$`,
		`https?://\S+`,
		`doi:\S+`,
		`©.*`,
		`第[ \t]*\d+[ \t]*卷`,
		`[①②③④⑤⑥⑦⑧⑨⑩].*`,
	}
	for _, label := range defaultLabels {
		alts = append(alts, regexp.QuoteMeta(label))
	}
	for _, label := range extraLabels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(label))
	}
	return regexp.MustCompile(`(?im)^(?:` + strings.Join(alts, "|") + `)`)
}

// citationRe matches inline citation and footnote markers: bracketed
// numerics with an optional superscript page range ("[12]", "[ 3 ]",
// "[12]34-56") and circled-digit footnote glyphs, in standard and
// full-width bracket forms.
var citationRe = regexp.MustCompile(
	`\[[ \t]*\d+[ \t]*\](?:\d+-\d+)?` +
		`|［[ \t]*\d+[ \t]*］(?:\d+-\d+)?` +
		`|\[[①②③④⑤⑥⑦⑧⑨⑩]\]` +
		`|［[①②③④⑤⑥⑦⑧⑨⑩]］`,
)

// lineNumberRe strips source line-numbering prefixes: a leading number
// followed by a pipe ("12 | text") or by two or more spaces ("12  text").
// A number with a single trailing space is prose and is left alone.
var lineNumberRe = regexp.MustCompile(`(?m)^[ \t]*\d+(?:[ \t]*\|[ \t]*|[ \t]{2,})`)

// hyphenBreakRe matches a line-wrap hyphenation: letter, hyphen, newline,
// letter. Replacement joins the two letters.
var hyphenBreakRe = regexp.MustCompile(`([a-zA-Z])-\n([a-zA-Z])`)

// listItemRe recognises list-item markers at the start of a line:
// parenthesised enumerators "(a)", single-character enumerators "1." or
// "b)", and bullet glyphs followed by whitespace.
var listItemRe = regexp.MustCompile(`^[ \t]*(?:\([a-zA-Z0-9]+\)|[a-zA-Z0-9][.)]|[•●*–-][ \t])`)

// captionRe recognises figure and table captions in English and Chinese.
var captionRe = regexp.MustCompile(`(?i)^(?:fig(?:ure)?\.? \d+|table \d+|图[ \t]*\d+|表[ \t]*\d+)\b`)

// cjkGapRe matches a spurious space wedged between two Han characters, a
// common artifact of PDF text extraction from Chinese documents.
var cjkGapRe = regexp.MustCompile(`([\x{4e00}-\x{9fff}])[ \t]+([\x{4e00}-\x{9fff}])`)

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// terminalSuffixes end a complete thought. Both ASCII and full-width CJK
// sentence enders are included, plus the closing quote and colon forms that
// legitimately end a line.
var terminalSuffixes = []string{".", "?", "!", `"`, "”", ":", "。", "？", "！"}

func endsWithTerminal(s string) bool {
	for _, suffix := range terminalSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// isCompleteThought reports whether a stripped line can be emitted as-is by
// the rejoin pass: it ends in terminal punctuation, or is a list item, or is
// a figure/table caption.
func isCompleteThought(s string) bool {
	return endsWithTerminal(s) || listItemRe.MatchString(s) || captionRe.MatchString(s)
}
