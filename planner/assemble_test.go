package planner

import (
	"testing"

	"github.com/shopspring/decimal"
)

func plannedRecord(id, floorID, balance int, weight float64) ElementTypeRecord {
	return ElementTypeRecord{
		ElementTypeID:   id,
		ElementTypeName: "Test Element",
		FloorID:         floorID,
		Category:        "Beam",
		BalanceElements: balance,
		Weight:          weight,
	}
}

func TestAssemble_CollectsAllBlockingReasons(t *testing.T) {
	p := NewPlan()
	// Tower and floor both missing, and no quantities anywhere: three reasons,
	// reported together.
	payload, reasons := Assemble(p)
	if payload != nil {
		t.Error("Expected no payload for a blocked plan")
	}
	if len(reasons) != 3 {
		t.Fatalf("Expected 3 blocking reasons, got %v", reasons)
	}

	planWide := 0
	for _, reason := range reasons {
		if reason.Block == -1 {
			planWide++
		}
	}
	if planWide != 1 {
		t.Errorf("Expected exactly one plan-wide reason, got %v", reasons)
	}
}

func TestAssemble_ItemErrorBlocks(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	record := plannedRecord(1, 11, 5, 0)
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 3); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 9); err != nil {
		t.Fatal(err)
	}

	_, reasons := Assemble(p)
	if len(reasons) != 1 {
		t.Fatalf("Expected the quantity error to block assembly, got %v", reasons)
	}
	if reasons[0].Block != 0 {
		t.Errorf("Expected reason attached to block 0, got %v", reasons[0])
	}
}

func TestAssemble_SumsSameTypeOnSameFloor(t *testing.T) {
	record := plannedRecord(7, 42, 10, 0)

	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 3); err != nil {
		t.Fatal(err)
	}

	if err := p.AddBlock(KeepTowerChangeFloor); err != nil {
		t.Fatal(err)
	}
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 4); err != nil {
		t.Fatal(err)
	}

	payload, reasons := Assemble(p)
	if len(reasons) != 0 {
		t.Fatalf("Expected no blocking reasons, got %v", reasons)
	}
	items := payload["42"]
	if len(items) != 1 {
		t.Fatalf("Expected one summed entry for floor 42, got %v", payload)
	}
	if items[0].ElementTypeID != 7 || items[0].Quantity != 7 {
		t.Errorf("Expected {7, 7}, got %+v", items[0])
	}
}

func TestAssemble_FullScenario(t *testing.T) {
	// Element type E, balance 10, Tower A / Floor 1 / category C. Block 1
	// takes 6; block 2 (keepTowerChangeFloor, floor set back to 1) is refused
	// 5, then accepts 4. Assembly yields one entry of 10 for the floor.
	record := plannedRecord(500, 1, 10, 0)

	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	if err := p.SetRowCategory(activeRowID(p), "C"); err != nil {
		t.Fatal(err)
	}
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 6); err != nil {
		t.Fatal(err)
	}

	if err := p.AddBlock(KeepTowerChangeFloor); err != nil {
		t.Fatal(err)
	}
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 5); err != nil {
		t.Fatal(err)
	}
	if got := p.ActiveBlock().Selections[0].SelectedItems[0].ChosenQuantity; got != 0 {
		t.Fatalf("Expected 5 rejected with quantity at 0, got %d", got)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 4); err != nil {
		t.Fatal(err)
	}

	payload, reasons := Assemble(p)
	if len(reasons) != 0 {
		t.Fatalf("Expected submittable plan, got reasons %v", reasons)
	}
	if len(payload) != 1 {
		t.Fatalf("Expected a single floor entry, got %v", payload)
	}
	items := payload["1"]
	if len(items) != 1 || items[0].ElementTypeID != 500 || items[0].Quantity != 10 {
		t.Errorf("Expected floor 1 -> [{500, 10}], got %v", payload)
	}
}

func TestSummarize_WeightsPerFloor(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	heavy := plannedRecord(1, 10, 10, 2.5)
	if err := p.ToggleItem(activeRowID(p), heavy); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 4); err != nil {
		t.Fatal(err)
	}

	second := p.AddRow()
	light := plannedRecord(2, 20, 10, 0.75)
	light.Category = "Column"
	if err := p.SetRowCategory(second, "Column"); err != nil {
		t.Fatal(err)
	}
	if err := p.ToggleItem(second, light); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(second, 0, 2); err != nil {
		t.Fatal(err)
	}

	summary := Summarize(p)
	if summary.TotalUnits != 6 {
		t.Errorf("Expected 6 total units, got %d", summary.TotalUnits)
	}
	if len(summary.Floors) != 2 {
		t.Fatalf("Expected 2 floor summaries, got %v", summary.Floors)
	}
	if summary.Floors[0].FloorID != 10 || summary.Floors[1].FloorID != 20 {
		t.Errorf("Expected floors sorted by id, got %v", summary.Floors)
	}
	if !summary.Floors[0].TotalWeight.Equal(decimal.NewFromFloat(10.0)) {
		t.Errorf("Expected floor 10 weight 10.0, got %s", summary.Floors[0].TotalWeight)
	}
	if !summary.TotalWeight.Equal(decimal.NewFromFloat(11.5)) {
		t.Errorf("Expected total weight 11.5, got %s", summary.TotalWeight)
	}
}
