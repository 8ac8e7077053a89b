package planner

import "testing"

func TestTotalAllocated_SpansBlocksAndRows(t *testing.T) {
	p := NewPlan()
	rowID := activeRowID(p)
	if err := p.ToggleItem(rowID, testRecord(5, 20)); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(rowID, 0, 7); err != nil {
		t.Fatal(err)
	}

	second := p.AddRow()
	if err := p.SetRowCategory(second, "Column"); err != nil {
		t.Fatal(err)
	}
	other := testRecord(6, 20)
	other.Category = "Column"
	if err := p.ToggleItem(second, other); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(second, 0, 2); err != nil {
		t.Fatal(err)
	}

	if err := p.AddBlock(ChangeBoth); err != nil {
		t.Fatal(err)
	}
	if err := p.ToggleItem(activeRowID(p), testRecord(5, 20)); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 4); err != nil {
		t.Fatal(err)
	}

	if got := p.TotalAllocated(5); got != 11 {
		t.Errorf("Expected 7+4=11 allocated for type 5, got %d", got)
	}
	if got := p.TotalAllocated(6); got != 2 {
		t.Errorf("Expected 2 allocated for type 6, got %d", got)
	}
	if got := p.TotalAllocated(404); got != 0 {
		t.Errorf("Expected 0 for unknown type, got %d", got)
	}
}

func TestAvailable(t *testing.T) {
	p := NewPlan()
	record := testRecord(5, 10)
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}
	if err := p.SetQuantity(activeRowID(p), 0, 3); err != nil {
		t.Fatal(err)
	}
	if got := p.Available(record); got != 7 {
		t.Errorf("Expected 7 available, got %d", got)
	}
}

func TestAllocationTotals_SkipsZeroQuantities(t *testing.T) {
	p := NewPlan()
	if err := p.ToggleItem(activeRowID(p), testRecord(5, 10)); err != nil {
		t.Fatal(err)
	}

	totals := p.AllocationTotals()
	if len(totals) != 0 {
		t.Errorf("Expected no totals for zero quantities, got %v", totals)
	}

	if err := p.SetQuantity(activeRowID(p), 0, 3); err != nil {
		t.Fatal(err)
	}
	totals = p.AllocationTotals()
	if totals[5] != 3 {
		t.Errorf("Expected total 3 for type 5, got %v", totals)
	}
}

// Conservation: after any sequence of edits, every element type's plan-wide
// total stays within its balance, because a violating edit is rejected with
// the state unchanged.
func TestConservation_EditSequence(t *testing.T) {
	record := testRecord(1, 10)
	p := NewPlan()
	if err := p.ToggleItem(activeRowID(p), record); err != nil {
		t.Fatal(err)
	}

	for _, quantity := range []int{3, 12, -5, 10, 11, 6} {
		if err := p.SetQuantity(activeRowID(p), 0, quantity); err != nil {
			t.Fatalf("SetQuantity(%d) failed: %v", quantity, err)
		}
		if total := p.TotalAllocated(1); total > record.BalanceElements {
			t.Fatalf("Conservation violated after SetQuantity(%d): total %d > balance %d",
				quantity, total, record.BalanceElements)
		}
	}
	if got := p.TotalAllocated(1); got != 6 {
		t.Errorf("Expected final total 6, got %d", got)
	}
}
