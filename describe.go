// description scrubbing
package main

import (
	"regexp"
	"strings"
)

// a markdown link like "[label](url)", rewritten to just the label.
var MARKDOWN_LINK_PATTERN = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)

// urls stripped from descriptions: app store listings, donation pages, social links.
var LINK_PATTERNS = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://apps\.apple\.com/[^\s\)]+`),
	regexp.MustCompile(`(?i)https?://itunes\.apple\.com/[^\s\)]+`),
	regexp.MustCompile(`(?i)https?://.*?donate[^\s\)]*`),
	regexp.MustCompile(`(?i)https?://.*?paypal[^\s\)]*`),
	regexp.MustCompile(`(?i)https?://.*?patreon[^\s\)]*`),
	regexp.MustCompile(`(?i)https?://.*?ko-fi[^\s\)]*`),
	regexp.MustCompile(`(?i)https?://.*?github\.com/[^\s\)]+`),
	regexp.MustCompile(`(?i)https?://.*?bit\.ly/[^\s\)]+`),
	regexp.MustCompile(`(?i)https?://.*?t\.me/[^\s\)]+`),
	regexp.MustCompile(`(?i)https?://.*?discord[^\s\)]*`),
}

var HORIZONTAL_WHITESPACE_PATTERN = regexp.MustCompile(`[ \t]+`)
var EXCESS_NEWLINES_PATTERN = regexp.MustCompile(`\n{3,}`)

// strips markdown noise and link spam from `text`, then appends a summary of
// the injected `tweak_list`, if any. cleaning plain text is idempotent.
func clean_description(text string, tweak_list []string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "`", "")
	text = MARKDOWN_LINK_PATTERN.ReplaceAllString(text, "$1")

	for _, pattern := range LINK_PATTERNS {
		text = pattern.ReplaceAllString(text, "")
	}

	text = HORIZONTAL_WHITESPACE_PATTERN.ReplaceAllString(text, " ")
	text = EXCESS_NEWLINES_PATTERN.ReplaceAllString(text, "\n\n")

	result := strings.TrimSpace(text)

	if len(tweak_list) > 0 {
		shortlist := tweak_list
		if len(shortlist) > 5 {
			shortlist = shortlist[:5]
		}
		tweak_str := strings.Join(shortlist, ", ")
		if result != "" {
			result += "\n\nTweaks Injected: " + tweak_str
		} else {
			result = "Tweaks Injected: " + tweak_str
		}
	}

	return result
}

// the description shown when an app has nothing else to say.
func fallback_description(name string) string {
	return name + " for iOS"
}

// description for an app entry: the tweak summary alone, or a stock line.
func app_description(record AppRecord) string {
	description := clean_description("", record.TweakList)
	if description == "" {
		description = fallback_description(record.Name)
	}
	return description
}
