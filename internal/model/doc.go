// Package model defines the core data structures used throughout benchdist.
//
// This package contains the following main types:
//   - ScorePair: One benchmark result (single-core, multi-core)
//   - Series: The ordered score pairs cached for one normalized key
//   - Target: Per-identifier run state tracked by the acquisition pipeline
//   - Existence: Tri-state used for both cache and remote presence
//
// Models live in their own package because the crawler, database, pipeline
// and report packages all exchange them; keeping them here avoids import cycles.
package model
