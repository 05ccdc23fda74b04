package deptree

import "slices"

// Plan turns the forest into batches by repeatedly peeling its leaves.
// Items in the same batch do not depend on each other; every item appears
// after all of its dependencies. Each batch is sorted with compare.
//
// Plan works on a clone, so f is left untouched.
func Plan[T Item](f *Forest[T], compare func(a, b T) int) [][]T {
	work := f.Clone()
	var plan [][]T
	for !work.Empty() {
		leaves := work.Leaves()
		batch := make([]T, 0, len(leaves))
		for _, h := range leaves {
			batch = append(batch, work.nodes[h].Item)
		}
		if compare != nil {
			slices.SortFunc(batch, compare)
		}
		plan = append(plan, batch)
		work.Remove(leaves)
	}
	return plan
}
