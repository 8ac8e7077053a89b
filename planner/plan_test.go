package planner

import "testing"

func testRecord(id, balance int) ElementTypeRecord {
	return ElementTypeRecord{
		ElementTypeID:   id,
		ElementTypeName: "Test Element",
		FloorID:         1,
		Category:        "Beam",
		BalanceElements: balance,
	}
}

func activeRowID(p *Plan) string {
	return p.ActiveBlock().Selections[0].ID
}

func TestNewPlan_InitialState(t *testing.T) {
	p := NewPlan()
	if len(p.Blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(p.Blocks))
	}
	if p.ActiveIndex != 0 {
		t.Errorf("Expected active index 0, got %d", p.ActiveIndex)
	}
	block := p.ActiveBlock()
	if block.Tower != "" || block.Floor != "" {
		t.Error("Expected empty tower and floor on initial block")
	}
	if len(block.Selections) != 1 {
		t.Fatalf("Expected 1 empty row, got %d", len(block.Selections))
	}
	if len(block.Selections[0].SelectedItems) != 0 {
		t.Error("Expected no selected items on initial row")
	}
}

func TestSelectTower_CascadeReset(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	rowID := activeRowID(p)
	if err := p.ToggleItem(rowID, testRecord(1, 10)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	p.AddRow()

	p.SelectTower("Tower B")
	block := p.ActiveBlock()
	if block.Tower != "Tower B" {
		t.Errorf("Expected tower to change, got %q", block.Tower)
	}
	if block.Floor != "" {
		t.Errorf("Expected floor cleared on tower change, got %q", block.Floor)
	}
	if len(block.Selections) != 1 || len(block.Selections[0].SelectedItems) != 0 {
		t.Error("Expected selections reset to a single empty row")
	}
}

func TestSelectFloor_KeepsTower(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), testRecord(1, 10)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	p.SelectFloor("Floor 2")
	block := p.ActiveBlock()
	if block.Tower != "Tower A" {
		t.Errorf("Expected tower preserved, got %q", block.Tower)
	}
	if block.Floor != "Floor 2" {
		t.Errorf("Expected floor updated, got %q", block.Floor)
	}
	if len(block.Selections) != 1 || len(block.Selections[0].SelectedItems) != 0 {
		t.Error("Expected selections reset to a single empty row")
	}
}

func TestSetRowCategory_ClearsSelections(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.SetRowCategory(rowID, "Beam"); err != nil {
		t.Fatalf("SetRowCategory failed: %v", err)
	}
	if err := p.ToggleItem(rowID, testRecord(1, 10)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	if err := p.SetRowCategory(rowID, "Column"); err != nil {
		t.Fatalf("SetRowCategory failed: %v", err)
	}
	row := p.ActiveBlock().Selections[0]
	if row.Category != "Column" {
		t.Errorf("Expected category Column, got %q", row.Category)
	}
	if len(row.SelectedItems) != 0 {
		t.Error("Expected selections cleared on category change")
	}
}

func TestAvailableCategories_ExcludesUsedOnes(t *testing.T) {
	catalog := Catalog{
		"Tower A": {
			"Floor 1": {
				"Beam":   {ElementTypeID: 1, BalanceElements: 5},
				"Column": {ElementTypeID: 2, BalanceElements: 5},
				"Slab":   {ElementTypeID: 3, BalanceElements: 5},
			},
		},
	}
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	firstRow := activeRowID(p)
	if err := p.SetRowCategory(firstRow, "Beam"); err != nil {
		t.Fatalf("SetRowCategory failed: %v", err)
	}
	secondRow := p.AddRow()

	categories := p.AvailableCategories(catalog, secondRow)
	if len(categories) != 2 {
		t.Fatalf("Expected 2 offerable categories, got %v", categories)
	}
	for _, category := range categories {
		if category == "Beam" {
			t.Error("Expected Beam excluded: already used by another row")
		}
	}

	// The row keeping its own category still sees it offered.
	own := p.AvailableCategories(catalog, firstRow)
	if len(own) != 3 {
		t.Errorf("Expected the row's own category to stay offerable, got %v", own)
	}
}

func TestToggleItem_Idempotent(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	record := testRecord(1, 10)

	if err := p.ToggleItem(rowID, record); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if len(p.ActiveBlock().Selections[0].SelectedItems) != 1 {
		t.Fatal("Expected item selected after first toggle")
	}
	if p.ActiveBlock().Selections[0].SelectedItems[0].ChosenQuantity != 0 {
		t.Error("Expected chosen quantity to default to 0")
	}

	if err := p.ToggleItem(rowID, record); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if len(p.ActiveBlock().Selections[0].SelectedItems) != 0 {
		t.Error("Expected item deselected after second toggle")
	}
}

func TestToggleItem_NoopWhenExhaustedOrDisabled(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)

	disabled := testRecord(1, 10)
	disabled.Disable = true
	if err := p.ToggleItem(rowID, disabled); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if len(p.ActiveBlock().Selections[0].SelectedItems) != 0 {
		t.Error("Expected disabled item not to be selected")
	}

	if err := p.ToggleItem(rowID, testRecord(2, 0)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if len(p.ActiveBlock().Selections[0].SelectedItems) != 0 {
		t.Error("Expected zero-balance item not to be selected")
	}
}

func TestSetQuantity_NegativeRejected(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.ToggleItem(rowID, testRecord(1, 10)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if err := p.SetQuantity(rowID, 0, 4); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	if err := p.SetQuantity(rowID, 0, -1); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	selected := p.ActiveBlock().Selections[0].SelectedItems[0]
	if selected.ChosenQuantity != 4 {
		t.Errorf("Expected quantity unchanged at 4, got %d", selected.ChosenQuantity)
	}
	if selected.Error != "Quantity cannot be negative" {
		t.Errorf("Expected negative-quantity error, got %q", selected.Error)
	}
}

func TestSetQuantity_ErrorClearedOnCorrection(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.ToggleItem(rowID, testRecord(1, 5)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	if err := p.SetQuantity(rowID, 0, 9); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if p.ActiveBlock().Selections[0].SelectedItems[0].Error == "" {
		t.Fatal("Expected over-balance error")
	}

	if err := p.SetQuantity(rowID, 0, 5); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	selected := p.ActiveBlock().Selections[0].SelectedItems[0]
	if selected.ChosenQuantity != 5 {
		t.Errorf("Expected quantity 5, got %d", selected.ChosenQuantity)
	}
	if selected.Error != "" {
		t.Errorf("Expected error cleared, got %q", selected.Error)
	}
}

func TestSetQuantity_ConservationAcrossBlocks(t *testing.T) {
	// Catalog has element type E with balance 10. Block 1 takes 6, block 2
	// asks for 5 (rejected, 6+5 > 10), then 4 (accepted, 6+4 = 10).
	record := testRecord(99, 10)

	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 6); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	if err := p.AddBlock(KeepTowerChangeFloor); err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	if p.ActiveBlock().Tower != "Tower A" || p.ActiveBlock().Floor != "" {
		t.Fatal("Expected new block to keep tower and clear floor")
	}
	p.SelectFloor("Floor 1")
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	if err := p.SetQuantity(activeRowID(p), 0, 5); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	selected := &p.ActiveBlock().Selections[0].SelectedItems[0]
	if selected.ChosenQuantity != 0 {
		t.Errorf("Expected rejected edit to leave quantity at 0, got %d", selected.ChosenQuantity)
	}
	if selected.Error != "Quantity exceeds available amount" {
		t.Errorf("Expected over-balance error, got %q", selected.Error)
	}
	if p.TotalAllocated(99) != 6 {
		t.Errorf("Expected total allocated 6 after rejection, got %d", p.TotalAllocated(99))
	}

	if err := p.SetQuantity(activeRowID(p), 0, 4); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	selected = &p.ActiveBlock().Selections[0].SelectedItems[0]
	if selected.ChosenQuantity != 4 || selected.Error != "" {
		t.Errorf("Expected 4 accepted with no error, got %d / %q", selected.ChosenQuantity, selected.Error)
	}
	if p.TotalAllocated(99) != 10 {
		t.Errorf("Expected total allocated 10, got %d", p.TotalAllocated(99))
	}
}

func TestSetQuantity_SelfExcludedWhenReplacing(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.ToggleItem(rowID, testRecord(1, 10)); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	if err := p.SetQuantity(rowID, 0, 10); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	// Replacing 10 with 8 must not double-count the current value.
	if err := p.SetQuantity(rowID, 0, 8); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	selected := p.ActiveBlock().Selections[0].SelectedItems[0]
	if selected.ChosenQuantity != 8 || selected.Error != "" {
		t.Errorf("Expected replacement accepted, got %d / %q", selected.ChosenQuantity, selected.Error)
	}
}

func TestRemoveRow_LastRowReplaced(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.RemoveRow(rowID); err != nil {
		t.Fatalf("RemoveRow failed: %v", err)
	}
	block := p.ActiveBlock()
	if len(block.Selections) != 1 {
		t.Fatalf("Expected a fresh empty row, got %d rows", len(block.Selections))
	}
	if block.Selections[0].ID == rowID {
		t.Error("Expected the replacement row to be a new row")
	}
}

func TestAddBlock_Modes(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	p.SelectFloor("Floor 3")

	if err := p.AddBlock(KeepTowerAndFloor); err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	if p.ActiveIndex != 1 {
		t.Errorf("Expected new block active, got index %d", p.ActiveIndex)
	}
	if p.ActiveBlock().Tower != "Tower A" || p.ActiveBlock().Floor != "Floor 3" {
		t.Error("Expected keepTowerAndFloor to copy both")
	}
	if len(p.ActiveBlock().Selections) != 1 || len(p.ActiveBlock().Selections[0].SelectedItems) != 0 {
		t.Error("Expected duplicated block to start with empty selections")
	}

	if err := p.AddBlock(ChangeBoth); err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	if p.ActiveBlock().Tower != "" || p.ActiveBlock().Floor != "" {
		t.Error("Expected changeBoth to clear tower and floor")
	}

	if err := p.AddBlock("madeUpMode"); err == nil {
		t.Error("Expected error for unknown duplication mode")
	}
}

func TestRemoveBlock_FloorOfOne(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	if err := p.RemoveBlock(0); err != nil {
		t.Fatalf("RemoveBlock failed: %v", err)
	}
	if len(p.Blocks) != 1 {
		t.Fatalf("Expected block count to stay at 1, got %d", len(p.Blocks))
	}
	if p.ActiveBlock().Tower != "" {
		t.Error("Expected sole-block removal to reset to the initial plan")
	}
}

func TestRemoveBlock_ActiveIndexTracking(t *testing.T) {
	p := NewPlan()
	if err := p.AddBlock(ChangeBoth); err != nil {
		t.Fatal(err)
	}
	if err := p.AddBlock(ChangeBoth); err != nil {
		t.Fatal(err)
	}
	// Blocks: 0, 1, 2; active = 2. Removing block 0 keeps the same logical
	// block active.
	if err := p.RemoveBlock(0); err != nil {
		t.Fatalf("RemoveBlock failed: %v", err)
	}
	if p.ActiveIndex != 1 {
		t.Errorf("Expected active index decremented to 1, got %d", p.ActiveIndex)
	}

	// Removing the active block moves activity to block 0.
	if err := p.RemoveBlock(p.ActiveIndex); err != nil {
		t.Fatalf("RemoveBlock failed: %v", err)
	}
	if p.ActiveIndex != 0 {
		t.Errorf("Expected active index 0 after removing active block, got %d", p.ActiveIndex)
	}

	if err := p.RemoveBlock(7); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestSetActive_Bounds(t *testing.T) {
	p := NewPlan()
	if err := p.SetActive(0); err != nil {
		t.Errorf("SetActive(0) failed: %v", err)
	}
	if err := p.SetActive(1); err == nil {
		t.Error("Expected error for out-of-range active index")
	}
}

func TestReset_ReturnsToInitialState(t *testing.T) {
	p := NewPlan()
	p.SelectTower("Tower A")
	if err := p.AddBlock(KeepTowerAndFloor); err != nil {
		t.Fatal(err)
	}

	p.Reset()
	if len(p.Blocks) != 1 || p.ActiveIndex != 0 || p.ActiveBlock().Tower != "" {
		t.Error("Expected reset to restore the canonical initial plan")
	}
}
