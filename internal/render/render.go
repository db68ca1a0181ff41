// Package render turns unified notes into sanitized HTML for the
// read-only notes view.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type NotesRenderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func New() *NotesRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &NotesRenderer{md: md, sanitizer: bluemonday.UGCPolicy()}
}

// Render builds a markdown document from the structured sections, converts
// it and sanitizes the result. Sections without content are omitted.
func (r *NotesRenderer) Render(notes domain.UnifiedNotes) (string, error) {
	doc := buildMarkdown(notes)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(doc), &buf); err != nil {
		return "", fmt.Errorf("failed to render notes: %w", err)
	}
	return r.sanitizer.Sanitize(buf.String()), nil
}

func buildMarkdown(notes domain.UnifiedNotes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Unified notes (v%d)\n\n", notes.Version)

	if notes.Sections.Overview != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(notes.Sections.Overview)
		b.WriteString("\n\n")
	}
	writeList(&b, "Key concepts", notes.Sections.KeyConcepts)
	writeList(&b, "Definitions", notes.Sections.Definitions)
	writeList(&b, "Formulas", notes.Sections.Formulas)
	writeList(&b, "Step-by-step", notes.Sections.Steps)
	writeList(&b, "Worked examples", notes.Sections.Examples)
	writeList(&b, "Common mistakes", notes.Sections.Mistakes)
	writeList(&b, "Resources", notes.Sections.Resources)
	writeList(&b, "Revision checklist", notes.Sections.RevisionList)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
