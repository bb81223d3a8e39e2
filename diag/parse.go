package diag

import (
	jsp "github.com/buger/jsonparser"
)

// NodeView is the decoded form of one object in Snapshot's output,
// used by tests and tooling that want to inspect a snapshot without
// hand-rolling jsonparser calls themselves.
type NodeView struct {
	ID          uint64
	Description string
	State       string
	Error       string
	Drained     bool
	QueueDepth  int
	Edges       []EdgeView
}

type EdgeView struct {
	Description   string
	DestinationID uint64
	Terminal      bool // true iff the edge has no destination (destination_id was null)
	Style         string
}

// ParseSnapshot decodes Snapshot's output back into NodeViews, in the
// order the nodes were passed to Snapshot.
func ParseSnapshot(data []byte) ([]NodeView, error) {
	var views []NodeView
	_, err := jsp.ArrayEach(data, func(value []byte, _ jsp.ValueType, _ int, _ error) {
		views = append(views, parseNode(value))
	})
	return views, err
}

func parseNode(obj []byte) NodeView {
	var v NodeView
	if id, err := jsp.GetInt(obj, "id"); err == nil {
		v.ID = uint64(id)
	}
	if desc, err := jsp.GetString(obj, "description"); err == nil {
		v.Description = desc
	}
	if state, err := jsp.GetString(obj, "state"); err == nil {
		v.State = state
	}
	if msg, err := jsp.GetString(obj, "error"); err == nil {
		v.Error = msg
	}
	v.Drained, _ = jsp.GetBoolean(obj, "drained")
	if depth, err := jsp.GetInt(obj, "queue_depth"); err == nil {
		v.QueueDepth = int(depth)
	}
	if edgesRaw, _, _, err := jsp.Get(obj, "edges"); err == nil {
		jsp.ArrayEach(edgesRaw, func(edgeVal []byte, _ jsp.ValueType, _ int, _ error) {
			var e EdgeView
			if desc, err := jsp.GetString(edgeVal, "description"); err == nil {
				e.Description = desc
			}
			if val, vt, _, err := jsp.Get(edgeVal, "destination_id"); err == nil {
				if vt == jsp.Null {
					e.Terminal = true
				} else if id, perr := jsp.ParseInt(val); perr == nil {
					e.DestinationID = uint64(id)
				}
			}
			if style, err := jsp.GetString(edgeVal, "style"); err == nil {
				e.Style = style
			}
			v.Edges = append(v.Edges, e)
		})
	}
	return v
}
