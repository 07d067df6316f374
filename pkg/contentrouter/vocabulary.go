package contentrouter

import (
	"regexp"
	"strings"
)

// visionTools is the fixed set of tool identifiers that imply a visual
// capability is in play (spec.md §4.8 "tool-based" strategy).
var visionTools = map[string]bool{
	"screenshot": true, "snapshot": true, "capture": true, "browser_screenshot": true,
}

// explicitPhrases are literal request phrases that force vision routing
// under the "explicit" strategy.
var explicitPhrases = []string{
	"analyze this image", "describe the screenshot", "look at this image",
	"what's in this picture", "read this screenshot",
}

// browserVocabulary and screenshotVocabulary back the "auto" strategy's
// free-text checks (c) and (d) in spec.md §4.8. Whole-word, case-insensitive
// matching avoids false positives like "domestic" matching "dom".
var browserVocabulary = compileWordSet(
	"webpage", "browser", "ui", "dom", "element", "page", "website", "viewport",
)

var screenshotVocabulary = compileWordSet(
	"screenshot", "screen capture", "screen-capture", "snapshot",
)

func compileWordSet(words ...string) *regexp.Regexp {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}

func containsExplicitPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range explicitPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func anyToolIsVision(tools []string) bool {
	for _, t := range tools {
		if visionTools[strings.ToLower(t)] {
			return true
		}
	}
	return false
}
