package core

import (
	"path"
	"strings"
)

// NormalizeBaseName reduces a document name to its identity: directory
// components and the final extension are stripped. Both '/' and '\' are
// treated as separators.
//
//	NormalizeBaseName("a/b/Policy.v2.pdf") == "Policy.v2"
func NormalizeBaseName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := path.Base(name)
	if base == "." || base == "/" {
		return "", ErrMissingDocumentName
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "", ErrMissingDocumentName
	}
	return base, nil
}

// MarkdownName is the markdown artifact name for a base document name.
func MarkdownName(base string) string {
	return base + ".md"
}

// SectionsName is the sections artifact name for a segmentation strategy.
func SectionsName(strategy, base string) string {
	return strategy + "_" + base + ".json"
}

// ClausesName is the ranked clause artifact name for a base document name.
func ClausesName(base string) string {
	return base + ".json"
}

// RawName is the object key of a raw source document.
func RawName(base string) string {
	return "raw/" + base + ".pdf"
}
