package layout

// Overflow describes a cluster that needs a "+N more" affordance.
type Overflow struct {
	ClusterID int
	Visible   int // columns rendered
	Hidden    int // events placed in columns >= Visible
}

// Collapse reports the clusters that use more than maxColumns lanes.
// PRE: res was produced by Compute
// POST: Returns one entry per overflowing cluster, in cluster order; nil when maxColumns <= 0
func Collapse(res Result, maxColumns int) []Overflow {
	if maxColumns <= 0 {
		return nil
	}
	var out []Overflow
	for _, cl := range res.Clusters {
		if cl.ColumnCount <= maxColumns {
			continue
		}
		hidden := 0
		for _, idx := range cl.Members {
			if res.Positions[idx].Column >= maxColumns {
				hidden++
			}
		}
		out = append(out, Overflow{ClusterID: cl.ID, Visible: maxColumns, Hidden: hidden})
	}
	return out
}

// Hidden reports whether the event at input index idx falls behind a "+N more" affordance.
func Hidden(res Result, idx, maxColumns int) bool {
	if maxColumns <= 0 {
		return false
	}
	return res.Positions[idx].Column >= maxColumns
}
