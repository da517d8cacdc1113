// Package tool implements the gated tool registry: a static catalog of
// sixteen capability descriptors (cost, latency estimate, plan requirement,
// confirmation requirement) dispatched by name through one entry point.
//
// Execute never returns a Go error; every failure mode is represented as a
// failed Result. Gating is evaluated in a fixed, short-circuiting order —
// unknown tool, insufficient plan, missing confirmation — and rejected calls
// carry exactly zero cost and time. Calls that reach an implementation are
// timed, charged (unit cost on success, half on failure) and appended to a
// synchronized execution history.
//
// Each implementation either returns deterministic mock data or delegates to
// a configured external provider, selected by the process-wide tool mode.
// Provider failures are converted into half-cost failed Results at the
// implementation boundary; they never propagate.
package tool
