package arbiter

import "strings"

// buildClassifyPrompt asks the model to grade structural quality on a 1-10
// scale and to answer in strict JSON.
func buildClassifyPrompt(chunkText string) string {
	var sb strings.Builder
	sb.WriteString("You are a text quality inspector for a document cleaning pipeline.\n\n")
	sb.WriteString("Evaluate the STRUCTURAL quality of the following text, which was extracted from a PDF or Word document.\n")
	sb.WriteString("Judge ONLY paragraph and sentence structure, not writing style or factual content:\n")
	sb.WriteString("- Are sentences complete, or broken mid-line?\n")
	sb.WriteString("- Are paragraphs coherent units, or fragmented?\n")
	sb.WriteString("- Is the text free of leftover headers, footers, page numbers and citation debris?\n\n")
	sb.WriteString("TEXT:\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n\nScore from 1 (badly broken) to 10 (perfectly structured).\n")
	sb.WriteString(`Respond ONLY in JSON:
{
  "score": 7,
  "reason": "..."
}
`)
	return sb.String()
}
