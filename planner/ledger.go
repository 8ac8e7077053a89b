package planner

// TotalAllocated sums the chosen quantity for an element type across every
// selection of every row of every block. It is recomputed from the plan on
// demand rather than cached; the plan is small enough that the full scan is
// the simplest thing that is always right.
func (p *Plan) TotalAllocated(elementTypeID int) int {
	total := 0
	for _, block := range p.Blocks {
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.Item.ElementTypeID == elementTypeID {
					total += selected.ChosenQuantity
				}
			}
		}
	}
	return total
}

// Available returns how many units of the record's element type are still
// unallocated plan-wide.
func (p *Plan) Available(record ElementTypeRecord) int {
	return record.BalanceElements - p.TotalAllocated(record.ElementTypeID)
}

// AllocationTotals returns the plan-wide allocated quantity per element type,
// for the review screen.
func (p *Plan) AllocationTotals() map[int]int {
	totals := make(map[int]int)
	for _, block := range p.Blocks {
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.ChosenQuantity > 0 {
					totals[selected.Item.ElementTypeID] += selected.ChosenQuantity
				}
			}
		}
	}
	return totals
}
