// Package search implements query classification, multi-backend fan-out,
// and ranked merge/de-dup for the unified search tool (C8).
package search

import (
	"regexp"
	"strings"
)

// Class is the query classification the fixed backend-selection table is
// keyed on.
type Class string

const (
	ClassTextSearch       Class = "text-search"
	ClassFileTypeFilter   Class = "file-type-filter"
	ClassMetadataPredicate Class = "metadata-predicate"
	ClassAnalytical       Class = "analytical"
)

var (
	sizeOperatorRe = regexp.MustCompile(`(?i)\b(size|bytes)\s*[<>=]`)
	dateOperatorRe = regexp.MustCompile(`(?i)\b(before|after|since|modified)\s*[:<>=]`)
	fileExtRe      = regexp.MustCompile(`(?i)(ext:|\.\w{1,5}\s*$|\*\.\w{1,5})`)
	sqlKeywordsRe  = regexp.MustCompile(`(?i)^\s*(select|with)\s`)
)

// Classify is a deterministic, rule-based classifier: keyword presence and
// simple operators decide the class, never model inference, so the same
// query always yields the same class.
func Classify(text string) Class {
	trimmed := strings.TrimSpace(text)
	switch {
	case sqlKeywordsRe.MatchString(trimmed):
		return ClassAnalytical
	case sizeOperatorRe.MatchString(trimmed) || dateOperatorRe.MatchString(trimmed):
		return ClassMetadataPredicate
	case fileExtRe.MatchString(trimmed):
		return ClassFileTypeFilter
	default:
		return ClassTextSearch
	}
}
