// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AthirLogger with contextual
// helpers (request, component) and domain specific logging helpers for tool
// execution, model calls and memory layer degradation; collaborators upgrade
// to those helpers through the ModelCallLogger and LayerDegradeLogger
// interfaces when the configured Logger supports them.
package logging
