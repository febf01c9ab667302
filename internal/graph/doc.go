// Package graph implements the node graph and its evaluation.
//
// A Registry owns nodes keyed by host-assigned ids and one UpdateContext.
// Each node memoizes its value per epoch. Structural calls (CreateNode,
// ConnectNodes, ConnectNodeToView, ...) mark nodes dirty; RunPropUpdates
// walks dependent edges from the dirty set, lets Props sinks push values to
// the host, and advances the epoch.
//
// Nothing in this package is safe for concurrent use. The engine drives a
// registry from a single goroutine.
package graph
