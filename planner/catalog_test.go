package planner

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCatalog_LegacyFieldNames(t *testing.T) {
	// The stockyard endpoint publishes the balance under "Balance_elements"
	// and the backlog under "left _elements" (with the space).
	rawJSON := `{
		"Tower G6": {
			"Floor 1": {
				"shear wall": {
					"element_type": "SW",
					"element_type_id": 42,
					"element_type_name": "Shear Wall SW-200",
					"Balance_elements": 8,
					"left _elements": 3,
					"floor_id": 101,
					"weight": 2.5,
					"disable": false
				}
			}
		}
	}`

	var raw RawStockSnapshot
	if err := json.Unmarshal([]byte(rawJSON), &raw); err != nil {
		t.Fatalf("Failed to unmarshal raw snapshot: %v", err)
	}

	catalog, message := NormalizeCatalog(raw)
	if message != "" {
		t.Errorf("Expected no message for non-empty snapshot, got %q", message)
	}

	record, ok := catalog.Record("Tower G6", "Floor 1", "Shear Wall")
	if !ok {
		t.Fatalf("Expected record at Tower G6/Floor 1/Shear Wall, catalog: %+v", catalog)
	}
	if record.ElementTypeID != 42 {
		t.Errorf("Expected element_type_id 42, got %d", record.ElementTypeID)
	}
	if record.BalanceElements != 8 {
		t.Errorf("Expected balance 8, got %d", record.BalanceElements)
	}
	if record.TotalQuantity != 11 {
		t.Errorf("Expected total quantity 8+3=11, got %d", record.TotalQuantity)
	}
	if record.FloorID != 101 {
		t.Errorf("Expected floor_id 101, got %d", record.FloorID)
	}
	if record.Category != "Shear Wall" {
		t.Errorf("Expected title-cased category, got %q", record.Category)
	}
}

func TestNormalizeCatalog_ConsistentFieldNames(t *testing.T) {
	raw := RawStockSnapshot{
		"Tower A": {
			"Floor 2": {
				"Beam": {
					"element_type_id":  7.0,
					"balance_elements": 5.0,
					"left_elements":    2.0,
					"floor_id":         55.0,
				},
			},
		},
	}

	catalog, _ := NormalizeCatalog(raw)
	record, ok := catalog.Record("Tower A", "Floor 2", "Beam")
	if !ok {
		t.Fatal("Expected record under Tower A/Floor 2/Beam")
	}
	if record.BalanceElements != 5 || record.TotalQuantity != 7 {
		t.Errorf("Expected balance 5, total 7; got %d, %d", record.BalanceElements, record.TotalQuantity)
	}
}

func TestNormalizeCatalog_EmptySnapshot(t *testing.T) {
	catalog, message := NormalizeCatalog(nil)
	if len(catalog) != 0 {
		t.Errorf("Expected empty catalog, got %d towers", len(catalog))
	}
	if message == "" {
		t.Error("Expected explanatory message for empty snapshot")
	}
}

func TestNormalizeCatalog_SkipsRecordsWithoutID(t *testing.T) {
	raw := RawStockSnapshot{
		"Tower A": {
			"Floor 1": {
				"Column": {"balance_elements": 4.0},
			},
		},
	}

	catalog, message := NormalizeCatalog(raw)
	if len(catalog) != 0 {
		t.Errorf("Expected leaf without element_type_id to be skipped, got %+v", catalog)
	}
	if message == "" {
		t.Error("Expected empty-catalog message when every leaf is skipped")
	}
}

func TestCatalog_TowersAndFloors(t *testing.T) {
	catalog := Catalog{
		"Tower A": {
			"Floor 1": {"Beam": {ElementTypeID: 1}},
			"Floor 2": {"Beam": {ElementTypeID: 2}},
		},
	}

	if len(catalog.Towers()) != 1 {
		t.Errorf("Expected 1 tower, got %d", len(catalog.Towers()))
	}
	if len(catalog.Floors("Tower A")) != 2 {
		t.Errorf("Expected 2 floors, got %d", len(catalog.Floors("Tower A")))
	}
	if len(catalog.Floors("Tower B")) != 0 {
		t.Error("Expected no floors for unknown tower")
	}
}
