package planner

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// SubmissionItem is one entry of the erection request body.
type SubmissionItem struct {
	ElementTypeID int `json:"element_type_id"`
	Quantity      int `json:"quantity"`
}

// SubmissionPayload is the wire shape of a stock erection request: floor id to
// the element type quantities requested for that floor. This matches the
// body accepted by the stock_erection endpoint.
type SubmissionPayload map[string][]SubmissionItem

// BlockingReason is one reason the plan cannot be submitted yet. Block is the
// zero-based block index, or -1 for plan-wide reasons.
type BlockingReason struct {
	Block  int    `json:"block"`
	Reason string `json:"reason"`
}

// Assemble flattens the plan into a submission payload, or reports every
// reason the plan is not submittable. Reasons are collected rather than
// short-circuited so the caller can show them all at once.
func Assemble(p *Plan) (SubmissionPayload, []BlockingReason) {
	var reasons []BlockingReason

	for i, block := range p.Blocks {
		if block.Tower == "" {
			reasons = append(reasons, BlockingReason{Block: i, Reason: "Tower is required"})
		}
		if block.Floor == "" {
			reasons = append(reasons, BlockingReason{Block: i, Reason: "Floor is required"})
		}
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.Error != "" {
					reasons = append(reasons, BlockingReason{
						Block:  i,
						Reason: fmt.Sprintf("%s: %s", selected.Item.ElementTypeName, selected.Error),
					})
				}
			}
		}
	}

	hasQuantity := false
	for _, block := range p.Blocks {
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.ChosenQuantity > 0 {
					hasQuantity = true
				}
			}
		}
	}
	if !hasQuantity {
		reasons = append(reasons, BlockingReason{Block: -1, Reason: "No quantities selected"})
	}

	if len(reasons) > 0 {
		return nil, reasons
	}

	// Group by the floor id carried on each record, not the block's floor
	// label: two blocks can target the same floor, in which case quantities
	// for the same element type are summed.
	payload := make(SubmissionPayload)
	for _, block := range p.Blocks {
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.ChosenQuantity == 0 {
					continue
				}
				floorKey := strconv.Itoa(selected.Item.FloorID)
				merged := false
				for j, item := range payload[floorKey] {
					if item.ElementTypeID == selected.Item.ElementTypeID {
						payload[floorKey][j].Quantity += selected.ChosenQuantity
						merged = true
						break
					}
				}
				if !merged {
					payload[floorKey] = append(payload[floorKey], SubmissionItem{
						ElementTypeID: selected.Item.ElementTypeID,
						Quantity:      selected.ChosenQuantity,
					})
				}
			}
		}
	}

	return payload, nil
}

// FloorSummary is the per-floor review line shown before submission.
type FloorSummary struct {
	FloorID     int             `json:"floor_id"`
	TotalUnits  int             `json:"total_units"`
	TotalWeight decimal.Decimal `json:"total_weight"`
}

// PlanSummary aggregates the whole plan for the review step.
type PlanSummary struct {
	Floors      []FloorSummary  `json:"floors"`
	TotalUnits  int             `json:"total_units"`
	TotalWeight decimal.Decimal `json:"total_weight"`
}

// Summarize totals the plan's units and weight per floor. Weights come from
// the element type records and are summed as decimals so the review screen
// never shows float drift on large requests.
func Summarize(p *Plan) PlanSummary {
	type floorAgg struct {
		units  int
		weight decimal.Decimal
	}
	byFloor := make(map[int]*floorAgg)

	for _, block := range p.Blocks {
		for _, row := range block.Selections {
			for _, selected := range row.SelectedItems {
				if selected.ChosenQuantity == 0 {
					continue
				}
				agg, ok := byFloor[selected.Item.FloorID]
				if !ok {
					agg = &floorAgg{weight: decimal.Zero}
					byFloor[selected.Item.FloorID] = agg
				}
				agg.units += selected.ChosenQuantity
				itemWeight := decimal.NewFromFloat(selected.Item.Weight).
					Mul(decimal.NewFromInt(int64(selected.ChosenQuantity)))
				agg.weight = agg.weight.Add(itemWeight)
			}
		}
	}

	summary := PlanSummary{TotalWeight: decimal.Zero}
	floorIDs := make([]int, 0, len(byFloor))
	for floorID := range byFloor {
		floorIDs = append(floorIDs, floorID)
	}
	sort.Ints(floorIDs)

	for _, floorID := range floorIDs {
		agg := byFloor[floorID]
		summary.Floors = append(summary.Floors, FloorSummary{
			FloorID:     floorID,
			TotalUnits:  agg.units,
			TotalWeight: agg.weight,
		})
		summary.TotalUnits += agg.units
		summary.TotalWeight = summary.TotalWeight.Add(agg.weight)
	}
	return summary
}
