package planner

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ElementTypeRecord is one leaf of the normalized stock catalog: a single
// element type balance under a (tower, floor, category) path.
type ElementTypeRecord struct {
	ElementTypeID   int     `json:"element_type_id"`
	ElementTypeName string  `json:"element_type_name"`
	ElementType     string  `json:"element_type"`
	FloorID         int     `json:"floor_id"`
	Category        string  `json:"category"`
	BalanceElements int     `json:"balance_elements"`
	TotalQuantity   int     `json:"total_quantity"`
	Weight          float64 `json:"weight"`
	Disable         bool    `json:"disable"`
}

// Catalog is the normalized stock snapshot: tower -> floor -> category -> record.
// It is immutable for the duration of one planning session and replaced
// wholesale on re-fetch.
type Catalog map[string]map[string]map[string]ElementTypeRecord

// RawStockRecord is one leaf of the raw snapshot as it comes off the wire.
// The legacy stock endpoint is not consistent about field names (the backlog
// count is even published under a key containing a space), so the leaf is kept
// as a loose map and resolved through the field tables below.
type RawStockRecord map[string]interface{}

// RawStockSnapshot mirrors the stockyard endpoint response:
// tower name -> floor name -> category -> raw record.
type RawStockSnapshot map[string]map[string]map[string]RawStockRecord

// Field name variants seen in stock snapshots. Order matters: the first key
// present wins.
var (
	balanceFields = []string{"balance_elements", "Balance_elements", "balancel_elements"}
	backlogFields = []string{"left _elements", "left_elements", "Left_elements"}
	idFields      = []string{"element_type_id"}
	nameFields    = []string{"element_type_name"}
	typeFields    = []string{"element_type"}
	floorIDFields = []string{"floor_id"}
	weightFields  = []string{"weight", "element_type_weight"}
	disableFields = []string{"disable"}
)

// NormalizeCatalog converts a raw stock snapshot into a Catalog. It is a pure
// function: an empty or nil snapshot yields an empty catalog and a message for
// the caller, never an error that needs recovering from.
func NormalizeCatalog(raw RawStockSnapshot) (Catalog, string) {
	catalog := make(Catalog)
	categoryTitle := cases.Title(language.English)

	if len(raw) == 0 {
		return catalog, "No stock available for erection in this project"
	}

	for tower, floors := range raw {
		for floor, categories := range floors {
			for category, rawRecord := range categories {
				record := normalizeRecord(categoryTitle.String(strings.TrimSpace(category)), rawRecord)
				if record.ElementTypeID == 0 {
					// A leaf without an element type id cannot be allocated
					// against; skip it rather than poison the catalog.
					continue
				}
				if _, ok := catalog[tower]; !ok {
					catalog[tower] = make(map[string]map[string]ElementTypeRecord)
				}
				if _, ok := catalog[tower][floor]; !ok {
					catalog[tower][floor] = make(map[string]ElementTypeRecord)
				}
				catalog[tower][floor][record.Category] = record
			}
		}
	}

	if len(catalog) == 0 {
		return catalog, "No stock available for erection in this project"
	}
	return catalog, ""
}

func normalizeRecord(category string, raw RawStockRecord) ElementTypeRecord {
	balance := intField(raw, balanceFields)
	backlog := intField(raw, backlogFields)

	return ElementTypeRecord{
		ElementTypeID:   intField(raw, idFields),
		ElementTypeName: stringField(raw, nameFields),
		ElementType:     stringField(raw, typeFields),
		FloorID:         intField(raw, floorIDFields),
		Category:        category,
		BalanceElements: balance,
		TotalQuantity:   balance + backlog,
		Weight:          floatField(raw, weightFields),
		Disable:         boolField(raw, disableFields),
	}
}

func intField(raw RawStockRecord, keys []string) int {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			switch n := v.(type) {
			case int:
				return n
			case int64:
				return int(n)
			case float64:
				return int(n)
			case string:
				var parsed int
				if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &parsed); err == nil {
					return parsed
				}
			}
		}
	}
	return 0
}

func floatField(raw RawStockRecord, keys []string) float64 {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			switch n := v.(type) {
			case float64:
				return n
			case int:
				return float64(n)
			case int64:
				return float64(n)
			}
		}
	}
	return 0
}

func stringField(raw RawStockRecord, keys []string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func boolField(raw RawStockRecord, keys []string) bool {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// Towers returns the tower names present in the catalog.
func (c Catalog) Towers() []string {
	towers := make([]string, 0, len(c))
	for tower := range c {
		towers = append(towers, tower)
	}
	return towers
}

// Floors returns the floor names available under a tower.
func (c Catalog) Floors(tower string) []string {
	floors := make([]string, 0, len(c[tower]))
	for floor := range c[tower] {
		floors = append(floors, floor)
	}
	return floors
}

// Record looks up the element type record at a catalog path.
func (c Catalog) Record(tower, floor, category string) (ElementTypeRecord, bool) {
	record, ok := c[tower][floor][category]
	return record, ok
}
