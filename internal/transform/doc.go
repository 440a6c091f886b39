// Package transform holds the series stages of a render: delta, technical indicators,
// range trimming and subheading formatting. Every stage returns a new Series and never
// modifies its input.
package transform
