package service

import (
	"strings"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
)

const (
	// basicFragmentCap bounds how much of the user message the heuristic
	// will look at.
	basicFragmentCap = 5000
	// basicSentenceCount is how many leading sentences survive.
	basicSentenceCount = 3
	// basicWordCap truncates the result with an ellipsis beyond this.
	basicWordCap = 60
)

// Payload markers embedded by the prompt templates; the heuristic
// summarizes what follows them instead of the instruction text.
var fragmentMarkers = []string{"Text:", "Raw extracted items:"}

// textFragment pulls the text to summarize out of the most recent user
// message, preferring the section after the payload marker the prompt
// templates embed.
func textFragment(messages []model.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != model.RoleUser {
			continue
		}
		content := messages[i].Content
		for _, marker := range fragmentMarkers {
			if idx := strings.Index(content, marker); idx >= 0 {
				content = content[idx+len(marker):]
				break
			}
		}
		if len(content) > basicFragmentCap {
			content = content[:basicFragmentCap]
		}
		return content
	}
	return ""
}

// basicCompletion is the offline heuristic backend: deterministic, no
// network. It keeps the first three sentences of the extracted fragment
// (or the first 200 characters when no sentence is found) and caps the
// result at 60 words.
func basicCompletion(messages []model.Message) string {
	text := textFragment(messages)

	flattened := strings.ReplaceAll(text, "\n", " ")
	var sentences []string
	for _, s := range strings.Split(flattened, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == basicSentenceCount {
			break
		}
	}

	var summary string
	if len(sentences) == 0 {
		if len(text) > 200 {
			text = text[:200]
		}
		summary = text
	} else {
		summary = strings.Join(sentences, ". ")
	}

	words := strings.Fields(summary)
	if len(words) > basicWordCap {
		summary = strings.Join(words[:basicWordCap], " ") + "..."
	}
	return summary
}
