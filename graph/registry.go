package graph

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// NodeID stably identifies a Node within a Registry, independent of Go
// pointer identity, so diagnostic sampling and external tooling have
// something enumerable to address a node by.
type NodeID uint64

// Registry is an arena of Nodes keyed by NodeID, backed by an
// xsync.MapOf for lock-free concurrent reads and writes.
type Registry struct {
	seq   atomic.Uint64
	nodes *xsync.MapOf[NodeID, *Node]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{nodes: xsync.NewMapOf[NodeID, *Node]()}
}

func (r *Registry) register(n *Node) NodeID {
	id := NodeID(r.seq.Add(1))
	r.nodes.Store(id, n)
	return id
}

// Lookup returns the node stored under id, if any.
func (r *Registry) Lookup(id NodeID) (*Node, bool) {
	return r.nodes.Load(id)
}

// Delete removes a node from the registry -- used once a node is fully
// drained and no longer needed by any diagnostic tooling.
func (r *Registry) Delete(id NodeID) {
	r.nodes.Delete(id)
}

// Range calls f for every node currently registered, in no particular
// order; stops early if f returns false.
func (r *Registry) Range(f func(id NodeID, n *Node) bool) {
	r.nodes.Range(f)
}

// Size reports the number of registered nodes.
func (r *Registry) Size() int {
	return r.nodes.Size()
}
