// Package memory implements the four-layer contextual memory behind the
// orchestrator:
//
//  1. Short-term: bounded recent-message buffer per user (Redis list or
//     in-process fallback, capacity 10, most-recent-first)
//  2. Semantic: similarity-searchable index of past message text (in-process
//     cosine index over a pluggable Embedder, or a no-op fallback)
//  3. Preferences: per (user, persona) key/value map with a 24h freshness
//     window (Redis or in-process fallback)
//  4. Summary: one latest condensed text per conversation with upsert
//     semantics (SQL-backed, or unavailable)
//
// Every layer is independently optional. Construction probes each backing
// collaborator without raising; an absent collaborator degrades the layer to
// its fallback and callers observe empty/default data, never errors.
// BuildContext aggregates all four layers into one read-only Bundle per
// request.
package memory
