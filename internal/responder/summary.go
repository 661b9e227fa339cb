package responder

import (
	"fmt"
	"strings"
)

// SummaryPost is a previously classified post fed back to the model for an
// issue-level summary.
type SummaryPost struct {
	FullText          string `json:"full_text"`
	ContextualContent string `json:"contextual_content"`
}

// SummaryMarker separates the summary instructions from the numbered posts.
const SummaryMarker = "TikTok Posts:"

// SummaryHeader is the fixed instruction block for issue summaries.
const SummaryHeader = `Given a list of TikTok posts, analyze and summarize the main issues, problems, and provide suggestions. Output should be in JSON format.

Guidelines:

1. Main Issue: Identify the primary theme or topic that appears across multiple posts
2. Problem: Describe the specific problems or concerns raised in the posts
3. Suggestion: Provide actionable recommendations to address the issues
4. Urgency Score: Rate from 0-100 based on the severity and time-sensitivity of the issues

Return the output in JSON format:
{
  "main_issue": "Brief description of the main issue",
  "problem": "Detailed description of the problems",
  "suggestion": "Actionable suggestions",
  "urgency_score": "0-100"
}

` + SummaryMarker + "\n"

// ComposeSummaryPrompt numbers each post from 1 and joins them with blank lines
// after SummaryHeader.
func ComposeSummaryPrompt(posts []SummaryPost) string {
	blocks := make([]string, len(posts))
	for i, p := range posts {
		blocks[i] = fmt.Sprintf("Post %d:\n%s\nContext: %s", i+1, p.FullText, p.ContextualContent)
	}

	return SummaryHeader + strings.Join(blocks, "\n\n")
}
