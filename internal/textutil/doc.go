// Package textutil provides text processing utilities for captions,
// fingerprinting, and similarity.
//
// The primary use cases are:
//   - Sanitizing captions before they cross the publishing boundary
//   - Creating token-based fingerprints from caption text for comparison
//   - Computing cosine similarity between fingerprints
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric characters,
// and filters tokens shorter than 3 characters.
package textutil
