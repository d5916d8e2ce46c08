// Package repurpose turns existing posts into new reels. A run downloads the
// source media through the shared asset cache, extracts candidate sub-clips
// per asset via scene detection (with an even-split fallback), shuffles and
// greedily selects candidates to fill the plan's target duration, stitches
// the selection with crossfades, overlays the hook, and exports.
//
// Candidate selection is randomized on purpose so repeated runs over the same
// material produce different reels; tests inject a seeded rand source.
package repurpose
