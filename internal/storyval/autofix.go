package storyval

import (
	"strings"

	"mysteryforge/internal/types"
)

// Common UTF-8-decoded-as-Latin-1 sequences and their intended characters.
var mojibakeReplacer = strings.NewReplacer(
	"â€™", "'",
	"â€˜", "'",
	"â€œ", "“",
	"â€", "”",
	"â€“", "–",
	"â€”", "—",
	"â€¦", "…",
	"Ã©", "é",
	"Ã¨", "è",
	"Ã¼", "ü",
	"Ã ", "à",
	"�", "",
)

func mojibakeMarkers() []string {
	return []string{"â€", "Ã©", "Ã¨", "Ã¼", "Ã ", "�"}
}

// FixText repairs known encoding damage in a single string.
func FixText(s string) string {
	return mojibakeReplacer.Replace(s)
}

// SanitizeParagraphs repairs encoding damage across a paragraph list.
func SanitizeParagraphs(paragraphs []string) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = FixText(p)
	}
	return out
}

// SanitizeProse repairs encoding damage across generated chapters.
func SanitizeProse(p types.Prose) types.Prose {
	out := types.Prose{Chapters: make([]types.Chapter, len(p.Chapters))}
	for i, ch := range p.Chapters {
		out.Chapters[i] = types.Chapter{
			Title:      FixText(ch.Title),
			Paragraphs: SanitizeParagraphs(ch.Paragraphs),
		}
	}
	return out
}
