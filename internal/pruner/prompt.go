package pruner

import "strings"

// buildHeadingsPrompt asks the model to locate the document body inside a
// sample of the first and last paragraphs.
func buildHeadingsPrompt(sample string) string {
	var sb strings.Builder
	sb.WriteString("You are cleaning a document that was extracted from a PDF or Word file.\n\n")
	sb.WriteString("Below is a sample of its first and last paragraphs. Identify:\n")
	sb.WriteString("1. The heading line where the real content begins, after front matter such as title pages, author lists, abstracts and tables of contents.\n")
	sb.WriteString("2. The heading line where back matter begins, such as references, bibliography, acknowledgements or appendices.\n\n")
	sb.WriteString("DOCUMENT SAMPLE:\n")
	sb.WriteString(sample)
	sb.WriteString("\n\nCopy each heading exactly as it appears in the sample.\n")
	sb.WriteString("Use an empty string when there is no front matter or no back matter to remove.\n")
	sb.WriteString(`Respond ONLY in JSON:
{
  "start_heading": "...",
  "end_heading": "..."
}
`)
	return sb.String()
}
