package service

import (
	"regexp"
	"strings"
)

// hashtagPattern matches #tags made of ASCII word characters and the full
// Bengali block (U+0980-U+09FF), so tags like #বাংলা work.
var hashtagPattern = regexp.MustCompile(`#([A-Za-z0-9_\x{0980}-\x{09FF}]+)`)

// mentionPattern matches @username handles. Usernames are ASCII.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// ExtractHashtags returns the unique hashtags in content, in order of first
// appearance, without the leading '#'. ASCII letters are lowercased so #Go
// and #go are the same tag; Bengali has no case to fold.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ExtractMentions returns the unique @usernames in content, in order of
// first appearance, without the leading '@'. Whether a handle refers to a
// real user is the caller's problem; unknown handles are skipped there.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
