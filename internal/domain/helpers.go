package domain

import (
	"context"
	"path/filepath"
	"strings"
)

type progressKey struct{}

func WithProgress(ctx context.Context, p Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, p)
}

// ProgressFrom returns the Progress stored in ctx, or a no-op one.
func ProgressFrom(ctx context.Context) Progress {
	if p, ok := ctx.Value(progressKey{}).(Progress); ok && p != nil {
		return p
	}
	return nopProgress{}
}

type nopProgress struct{}

func (nopProgress) Begin(string, int) {}
func (nopProgress) Step(UnitResult)   {}
func (nopProgress) End()              {}

// BaseName is the file name without directory, compression suffixes and
// the document extension: "scans/book.djvu.xz" -> "book".
func BaseName(path string) string {
	name := filepath.Base(path)
	for ext := filepath.Ext(name); ext != name && isWrapper(ext); ext = filepath.Ext(name) {
		name = strings.TrimSuffix(name, ext)
	}
	if ext := filepath.Ext(name); ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// WrapperExtensions lists the compression suffixes stripped before the
// document extension.
func WrapperExtensions() []string {
	return []string{".gz", ".zst", ".xz", ".bz2"}
}

func isWrapper(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range WrapperExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}
