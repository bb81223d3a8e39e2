package diag

import (
	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lock"
)

// Snapshot renders a frozen view of nodes as a JSON array, one object
// per node: {"id", "description", "state", "error", "drained",
// "queue_depth", "edges":[{"description","destination_id","style"}]}.
// destination_id is null for a terminal edge (one with no destination
// node). Every node's lock is taken together, in canonical order, via
// lock.AcquireAll, so the snapshot reflects one consistent instant
// across the whole subgraph rather than node-by-node stragglers.
func Snapshot(nodes ...*graph.Node) ([]byte, error) {
	locks := make([]*lock.RWLock, len(nodes))
	for i, n := range nodes {
		locks[i] = n.Lock()
	}
	release := lock.AcquireAll(false, locks...)
	defer release()

	buf := make([]byte, 0, 256*len(nodes))
	buf = append(buf, '[')
	for i, n := range nodes {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendNode(buf, n)
	}
	buf = append(buf, ']')
	return buf, nil
}

// SnapshotRegistry renders every node currently registered in reg, via
// Registry.Range -- the whole-graph counterpart to Snapshot's
// explicit, caller-picked node list.
func SnapshotRegistry(reg *graph.Registry) ([]byte, error) {
	var nodes []*graph.Node
	reg.Range(func(_ graph.NodeID, n *graph.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return Snapshot(nodes...)
}

// SnapshotNode renders a single node looked up by id, or ok=false if
// no such node is registered -- the per-node counterpart for
// diagnostic endpoints that address one node at a time instead of
// rendering the whole graph.
func SnapshotNode(reg *graph.Registry, id graph.NodeID) (data []byte, ok bool) {
	n, found := reg.Lookup(id)
	if !found {
		return nil, false
	}
	data, _ = Snapshot(n)
	return data, true
}

// PruneDrained removes every fully drained node from reg and returns
// how many were removed, keeping a long-lived Registry's Size from
// growing unboundedly as a pipeline's nodes finish.
func PruneDrained(reg *graph.Registry) int {
	before := reg.Size()
	var drained []graph.NodeID
	reg.Range(func(id graph.NodeID, n *graph.Node) bool {
		state, _, _, _ := n.Snapshot()
		if state == graph.Drained {
			drained = append(drained, id)
		}
		return true
	})
	for _, id := range drained {
		reg.Delete(id)
	}
	return before - reg.Size()
}

func appendNode(dst []byte, n *graph.Node) []byte {
	state, err, drained, edges := n.Snapshot()

	dst = append(dst, `{"id":`...)
	dst = appendUint64(dst, uint64(n.ID()))
	dst = append(dst, `,"description":`...)
	dst = appendString(dst, n.Description())
	dst = append(dst, `,"state":`...)
	dst = appendString(dst, state.String())
	dst = append(dst, `,"error":`...)
	if err != nil {
		dst = appendString(dst, err.Error())
	} else {
		dst = append(dst, "null"...)
	}
	dst = append(dst, `,"drained":`...)
	dst = appendBool(dst, drained)
	dst = append(dst, `,"queue_depth":`...)
	dst = appendInt(dst, n.Queue().Len())
	dst = append(dst, `,"edges":[`...)
	for i, e := range edges {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, `{"description":`...)
		dst = appendString(dst, e.Description)
		dst = append(dst, `,"destination_id":`...)
		if e.Destination == nil {
			dst = append(dst, "null"...)
		} else {
			dst = appendUint64(dst, uint64(e.Destination.ID()))
		}
		dst = append(dst, `,"style":`...)
		dst = appendString(dst, e.Style.String())
		dst = append(dst, '}')
	}
	dst = append(dst, ']', '}')
	return dst
}
