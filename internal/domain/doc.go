// Package domain models security sentiment reports for the Lagos metro area.
//
// # Data Source
//
// Reports are short free-text items (social posts, news snippets, official
// announcements) gathered by per-source collectors. Each report carries a
// raw polarity score in [-1, 1] from an external scoring model; the domain
// layer recalibrates that score against the reporting source's known bias
// and classifies the text.
//
// # Bias Correction
//
// Every known source has a calibration tuple (adjustment_factor,
// baseline_negativity). The raw score is first normalized against the
// baseline, then negative input is scaled by the source factor while
// non-negative input receives a fixed 1.1x boost:
//
//	normalized = raw - baseline
//	raw < 0:  adjusted = normalized * factor + baseline
//	raw >= 0: adjusted = normalized * 1.1 + baseline
//
// The asymmetry is deliberate: negative-skewed channels (social media, news)
// over-report negativity, while positive content needs no source-specific
// down-weighting. Results are clamped to [-1, 1]. Sources missing from the
// table use the default tuple (1.0, -0.2) and never fail.
//
// Default calibration (factor / baseline):
//
//	twitter    0.7 / -0.35
//	facebook   0.8 / -0.25
//	news       0.6 / -0.45
//	government 1.2 / -0.05
//	community  1.0 / -0.15
//
// # Classification
//
// Area, category, and language are extracted by ordered keyword matching
// over lower-cased text; earlier table entries take priority and the first
// match wins, so classification is deterministic. Unresolvable inputs land
// on documented sentinels (AreaUnknown, CategoryGeneral, the primary
// language) rather than errors.
//
// Category priority: traffic, crime, law_enforcement, emergency, general.
// A text containing both a traffic and a crime keyword classifies as
// traffic because that set is checked first.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of normalized text and source.
// Reprocessing the same raw report produces the same ID, which keeps replays
// idempotent for downstream consumers. See [RecordID].
package domain
