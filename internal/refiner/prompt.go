package refiner

import "fmt"

func buildRepairPrompt(chunkText, reason string) string {
	hint := ""
	if reason != "" {
		hint = fmt.Sprintf("\nAn inspector flagged this chunk: %s\n", reason)
	}

	return fmt.Sprintf(`You are a text restoration specialist for documents extracted from PDF and Word files.

# YOUR TASK: REPAIR STRUCTURE

The following text has broken paragraph or sentence structure left over from the extraction process.%s
TEXT:
%s

# REPAIR RULES

**What to Fix:**
- Sentences split across lines → join them
- Paragraphs fragmented or glued together → restore proper boundaries
- Leftover headers, footers, page numbers, citation markers → remove them
- Words hyphenated by a line break → rejoin them

**What to Preserve:**
- Every fact, number, name and term, exactly as written
- The original language and wording
- Blank lines between paragraphs

CRITICAL: Do not summarise, translate, expand or editorialise. If the text is already well formed, return it unchanged.

Output ONLY the repaired text. Do not include any explanation.`, hint, chunkText)
}

func buildPolishPrompt(paragraph string) string {
	return fmt.Sprintf(`You are a copy editor cleaning one paragraph of text extracted from a PDF or Word document.

PARAGRAPH:
%s

Fix what the extraction broke: merge split sentences, remove stray page numbers, headers and citation markers, and repair obvious character-level garbage. Keep the wording, language and meaning exactly as they are. Do not summarise or rewrite.

If the paragraph is nothing but extraction debris (a bare page number, a running header, scattered symbols), respond with exactly:
JUNK

Otherwise output ONLY the cleaned paragraph. Do not include any explanation.`, paragraph)
}
