// Package landmark defines the per-frame facial landmark model consumed by the
// analyzers: points, frames, the configured index subsets and the ordered
// eye sample the aspect ratio is computed from.
package landmark
