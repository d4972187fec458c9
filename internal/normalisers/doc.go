// Package normalisers turns raw source text into domain structures.
//
// The manuscript normaliser splits a book written as structured text
// into titled sections and extracts inline media placeholders.
package normalisers
