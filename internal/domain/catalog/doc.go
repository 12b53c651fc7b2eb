// Package catalog holds the fixed set of landscape assessment categories.
//
// The catalog is defined at build time in catalog.yaml and embedded into the
// binary. It is read-only: every accessor returns copies, and there are no
// mutation operations. Category IDs are unique across the catalog and tool
// names are unique within a category; a violation is a build-time defect
// caught by Default() and its unit test.
//
// Example Usage:
//
//	cat := catalog.Default()
//	itsm, ok := cat.Get("itsm")
//	first, _ := cat.At(0)
package catalog
