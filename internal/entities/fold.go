package entities

import "golang.org/x/text/cases"

// FoldTitle returns the case-folded form of a title used for searching.
// Folding is full Unicode, so "ÉMILE" and "émile" or "ДЮНА" and "дюна" fold
// to the same string.
func FoldTitle(title string) string {
	return cases.Fold().String(title)
}
