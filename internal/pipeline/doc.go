// Package pipeline turns itmd source text into the generic Markdown tree.
//
// This package handles the stages that come before domain assembly:
//   - Source preprocessing (line ending normalization, blank line compression)
//   - Tokenization via Goldmark with GitHub Flavored Markdown extensions
//   - Conversion of the Goldmark AST into the closed mdtree variants
//   - Optional HTML rendering of individual top-level blocks
//
// Recognizing alerts, dated headings and events is handled by the alert and
// assemble packages. This separation keeps the pipeline ignorant of the
// itinerary dialect: it only knows CommonMark and GFM.
package pipeline
