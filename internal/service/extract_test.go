package service

import (
	"reflect"
	"testing"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no tags",
			content: "just a plain post",
			want:    nil,
		},
		{
			name:    "single ascii tag",
			content: "shipping day #golang",
			want:    []string{"golang"},
		},
		{
			name:    "bengali tag",
			content: "আমার প্রথম পোস্ট #বাংলা",
			want:    []string{"বাংলা"},
		},
		{
			name:    "mixed bengali and ascii",
			content: "#ঢাকা থেকে #cricket নিয়ে লিখছি #খেলা",
			want:    []string{"ঢাকা", "cricket", "খেলা"},
		},
		{
			name:    "ascii lowercased and deduped",
			content: "#Go vs #go vs #GO",
			want:    []string{"go"},
		},
		{
			name:    "order of first appearance",
			content: "#second wait no #first then #second again",
			want:    []string{"second", "first"},
		},
		{
			name:    "tag ends at punctuation",
			content: "love #ইলিশ, best fish",
			want:    []string{"ইলিশ"},
		},
		{
			name:    "bare hash is not a tag",
			content: "number # 42",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no mentions",
			content: "hello world",
			want:    nil,
		},
		{
			name:    "single mention",
			content: "cc @rahim",
			want:    []string{"rahim"},
		},
		{
			name:    "mention inside bengali text",
			content: "আমার প্রথম পোস্ট @rahim দেখো",
			want:    []string{"rahim"},
		},
		{
			name:    "multiple deduped case-insensitive",
			content: "@Karim and @karim and @fatema",
			want:    []string{"karim", "fatema"},
		},
		{
			name:    "email is still matched as handle",
			content: "reach me at rahim@example",
			want:    []string{"example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentions(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractMentions(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
