// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{"emphasis", "Soft **cotton** shirts", "<strong>cotton</strong>"},
		{"link", "See [sizes](https://example.com/sizes)", `<a href="https://example.com/sizes">sizes</a>`},
		{"strikethrough", "~~old~~ new", "<del>old</del>"},
		{"list", "- one\n- two", "<li>one</li>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.source, got, tt.contains)
			}
		})
	}
}

func TestToHTML_Empty(t *testing.T) {
	got, err := ToHTML("")
	if err != nil || got != "" {
		t.Errorf("ToHTML(\"\") = %q, %v; want empty", got, err)
	}
}

func TestToHTML_RawHTMLIsNotPassedThrough(t *testing.T) {
	got, err := ToHTML("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML leaked into output: %q", got)
	}
}
