package planner

import (
	"fmt"

	"github.com/google/uuid"
)

// SelectedItem is one element type chosen inside a row, with the quantity the
// user wants to allocate to the block and any validation error on that value.
type SelectedItem struct {
	Item           ElementTypeRecord `json:"item"`
	ChosenQuantity int               `json:"chosen_quantity"`
	Error          string            `json:"error,omitempty"`
}

// Row is a category-scoped group of item selections within a block. Changing
// the category clears the selections.
type Row struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	SelectedItems []SelectedItem `json:"selected_items"`
}

// Block is one destination (tower, floor) and the selections allocated to it.
type Block struct {
	Tower      string `json:"tower"`
	Floor      string `json:"floor"`
	Selections []Row  `json:"selections"`
}

// Plan is the full set of blocks being edited in one planning session. Exactly
// one block is active (editable) at a time.
type Plan struct {
	Blocks      []Block `json:"blocks"`
	ActiveIndex int     `json:"active_index"`
}

// Duplication policy for AddBlock.
const (
	KeepTowerAndFloor    = "keepTowerAndFloor"
	KeepTowerChangeFloor = "keepTowerChangeFloor"
	ChangeBoth           = "changeBoth"
)

func newRow() Row {
	return Row{ID: uuid.New().String(), SelectedItems: []SelectedItem{}}
}

func newBlock() Block {
	return Block{Selections: []Row{newRow()}}
}

// NewPlan returns the canonical initial plan: a single empty block, active.
func NewPlan() *Plan {
	return &Plan{Blocks: []Block{newBlock()}, ActiveIndex: 0}
}

// ActiveBlock returns the block currently open for editing.
func (p *Plan) ActiveBlock() *Block {
	return &p.Blocks[p.ActiveIndex]
}

func (p *Plan) findRow(rowID string) (*Row, error) {
	block := p.ActiveBlock()
	for i := range block.Selections {
		if block.Selections[i].ID == rowID {
			return &block.Selections[i], nil
		}
	}
	return nil, fmt.Errorf("row %s not found in active block", rowID)
}

// SelectTower sets the active block's tower. Floor choices and everything
// below them are tower-scoped, so the floor and all selections are reset.
func (p *Plan) SelectTower(tower string) {
	block := p.ActiveBlock()
	block.Tower = tower
	block.Floor = ""
	block.Selections = []Row{newRow()}
}

// SelectFloor sets the active block's floor, keeping the tower. Category and
// item availability are floor-scoped, so the selections are reset.
func (p *Plan) SelectFloor(floor string) {
	block := p.ActiveBlock()
	block.Floor = floor
	block.Selections = []Row{newRow()}
}

// SetRowCategory scopes a row to a category, clearing its selections.
func (p *Plan) SetRowCategory(rowID, category string) error {
	row, err := p.findRow(rowID)
	if err != nil {
		return err
	}
	row.Category = category
	row.SelectedItems = []SelectedItem{}
	return nil
}

// AvailableCategories returns the categories offerable to the given row of the
// active block: every category under the block's tower/floor that no other row
// of the same block already uses.
func (p *Plan) AvailableCategories(catalog Catalog, rowID string) []string {
	block := p.ActiveBlock()
	used := make(map[string]bool)
	for _, row := range block.Selections {
		if row.ID != rowID && row.Category != "" {
			used[row.Category] = true
		}
	}

	categories := make([]string, 0)
	for category := range catalog[block.Tower][block.Floor] {
		if !used[category] {
			categories = append(categories, category)
		}
	}
	return categories
}

// ToggleItem adds the item to the row's selections, or removes it if already
// selected. Adding is refused silently when the item is disabled or has no
// quantity left to allocate.
func (p *Plan) ToggleItem(rowID string, item ElementTypeRecord) error {
	row, err := p.findRow(rowID)
	if err != nil {
		return err
	}

	for i, selected := range row.SelectedItems {
		if selected.Item.ElementTypeID == item.ElementTypeID {
			row.SelectedItems = append(row.SelectedItems[:i], row.SelectedItems[i+1:]...)
			return nil
		}
	}

	if item.Disable {
		return nil
	}
	if item.BalanceElements-p.TotalAllocated(item.ElementTypeID) <= 0 {
		return nil
	}

	row.SelectedItems = append(row.SelectedItems, SelectedItem{Item: item})
	return nil
}

// SetQuantity applies the quantity edit rules, in order: a negative value is
// rejected with an error on the item; a value that would push the element
// type's plan-wide total past its balance is rejected with an error on the
// item; otherwise the value is accepted and the error cleared. A rejected edit
// leaves ChosenQuantity untouched, which is what keeps the plan-wide total
// within balance after every single-field edit.
func (p *Plan) SetQuantity(rowID string, itemIndex, newQuantity int) error {
	row, err := p.findRow(rowID)
	if err != nil {
		return err
	}
	if itemIndex < 0 || itemIndex >= len(row.SelectedItems) {
		return fmt.Errorf("item index %d out of range for row %s", itemIndex, rowID)
	}
	selected := &row.SelectedItems[itemIndex]

	if newQuantity < 0 {
		selected.Error = "Quantity cannot be negative"
		return nil
	}

	// A row cannot select the same element type twice, so subtracting only
	// this selection's own quantity is enough to exclude it from the total.
	allocatedElsewhere := p.TotalAllocated(selected.Item.ElementTypeID) - selected.ChosenQuantity
	if newQuantity+allocatedElsewhere > selected.Item.BalanceElements {
		selected.Error = "Quantity exceeds available amount"
		return nil
	}

	selected.ChosenQuantity = newQuantity
	selected.Error = ""
	return nil
}

// AddRow appends an empty row to the active block and returns its id.
func (p *Plan) AddRow() string {
	block := p.ActiveBlock()
	row := newRow()
	block.Selections = append(block.Selections, row)
	return row.ID
}

// RemoveRow deletes a row from the active block. Removing the last row leaves
// a fresh empty row in its place; a block never has zero rows.
func (p *Plan) RemoveRow(rowID string) error {
	block := p.ActiveBlock()
	for i := range block.Selections {
		if block.Selections[i].ID == rowID {
			block.Selections = append(block.Selections[:i], block.Selections[i+1:]...)
			if len(block.Selections) == 0 {
				block.Selections = []Row{newRow()}
			}
			return nil
		}
	}
	return fmt.Errorf("row %s not found in active block", rowID)
}

// AddBlock appends a new block per the duplication mode and makes it active.
func (p *Plan) AddBlock(mode string) error {
	current := p.ActiveBlock()
	block := newBlock()

	switch mode {
	case KeepTowerAndFloor:
		block.Tower = current.Tower
		block.Floor = current.Floor
	case KeepTowerChangeFloor:
		block.Tower = current.Tower
	case ChangeBoth:
	default:
		return fmt.Errorf("unknown block duplication mode: %s", mode)
	}

	p.Blocks = append(p.Blocks, block)
	p.ActiveIndex = len(p.Blocks) - 1
	return nil
}

// RemoveBlock deletes the block at index. The block count never drops below
// one: removing the sole block resets the plan to its initial state. The
// active index keeps tracking the same logical block where possible.
func (p *Plan) RemoveBlock(index int) error {
	if index < 0 || index >= len(p.Blocks) {
		return fmt.Errorf("block index %d out of range", index)
	}

	if len(p.Blocks) == 1 {
		*p = *NewPlan()
		return nil
	}

	p.Blocks = append(p.Blocks[:index], p.Blocks[index+1:]...)
	switch {
	case index == p.ActiveIndex:
		p.ActiveIndex = 0
	case index < p.ActiveIndex:
		p.ActiveIndex--
	}
	return nil
}

// SetActive switches which block is editable.
func (p *Plan) SetActive(index int) error {
	if index < 0 || index >= len(p.Blocks) {
		return fmt.Errorf("block index %d out of range", index)
	}
	p.ActiveIndex = index
	return nil
}

// Reset discards all blocks and returns to the initial single-empty-block state.
func (p *Plan) Reset() {
	*p = *NewPlan()
}
