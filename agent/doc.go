// Package agent wires the message pipeline: persona resolution, contextual
// memory assembly, keyword planning, policy filtering, gated tool execution,
// reply composition and memory write-back, in that fixed order.
//
// The orchestrator treats persistence and retrieval layers as best effort. A
// failed memory read degrades the context bundle, a failed write is logged
// and dropped; only the reply itself is load bearing. HandleMessage therefore
// returns an error only when no reply can be produced at all.
package agent
