// Package respparse extracts a single choice letter from free-form model
// output. It is shared by any adapter that asks models to name an option.
package respparse

import (
	"regexp"
	"strings"
)

// answerMarkers are tried in order against the whole text; the first capture
// wins. Chinese forms first (the default prompt asks for 答案是：LETTER), then
// common English phrasings.
var answerMarkers = []*regexp.Regexp{
	regexp.MustCompile(`答案是[：:]\s*\(?([A-Z])\)?`),
	regexp.MustCompile(`答案[：:]\s*\(?([A-Z])\)?`),
	regexp.MustCompile(`(?i)answer\s+is\s*[：:]?\s*\(?([A-Z])\)?`),
	regexp.MustCompile(`(?i)answer\s*[：:]\s*\(?([A-Z])\)?`),
}

// FirstOption returns the first option letter found in text, restricted to the
// allowed set. Explicit answer markers take precedence over bare letters; when
// nothing matches it returns "" and the caller scores that as a non-match.
func FirstOption(text string, options []string) string {
	allowed := optionSet(options)
	if len(allowed) == 0 {
		return ""
	}

	for _, re := range answerMarkers {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			letter := strings.ToUpper(m[1])
			if allowed[letter] {
				return letter
			}
		}
	}

	return firstBareOption(text, allowed)
}

// firstBareOption scans for the first allowed letter that stands alone, i.e.
// is not embedded in a larger alphanumeric token.
func firstBareOption(text string, allowed map[string]bool) string {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		if c < 'A' || c > 'Z' {
			continue
		}
		if !allowed[string(c)] {
			continue
		}

		prevOK := i == 0 || !isAlphaNum(text[i-1])
		nextOK := i+1 == len(text) || !isAlphaNum(text[i+1])
		if prevOK && nextOK {
			return string(c)
		}
	}
	return ""
}

func optionSet(options []string) map[string]bool {
	out := make(map[string]bool, len(options))
	for _, o := range options {
		o = strings.ToUpper(strings.TrimSpace(o))
		if len(o) != 1 || o[0] < 'A' || o[0] > 'Z' {
			continue
		}
		out[o] = true
	}
	return out
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
