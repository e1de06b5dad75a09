// Package reward implements the weighted lootbox draw engine.
package reward

import (
	"errors"
	"math/rand"

	"discord-lootbox-bot/internal/config"
)

// Errors for the draw engine.
var (
	ErrEmptyTable = errors.New("weight table is empty")
)

// Outcome is one reward tier in a weight table. Tables are ordered lowest
// tier first; weights are relative and need not sum to 100.
type Outcome struct {
	Tier   string
	Weight float64
	Coins  int64
	Notify bool
}

// Table is an ordered weight table.
type Table []Outcome

// TableFromConfig converts configured outcomes into a Table.
func TableFromConfig(outcomes []config.OutcomeConfig) Table {
	table := make(Table, 0, len(outcomes))
	for _, o := range outcomes {
		table = append(table, Outcome{
			Tier:   o.Tier,
			Weight: o.Weight,
			Coins:  o.Coins,
			Notify: o.Notify,
		})
	}
	return table
}

// TotalWeight returns the sum of all weights in the table.
func (t Table) TotalWeight() float64 {
	var total float64
	for _, o := range t {
		total += o.Weight
	}
	return total
}

// Drawer performs weighted random draws. The random source is injected so
// tests can seed it deterministically.
type Drawer struct {
	rnd *rand.Rand
}

// NewDrawer creates a Drawer with the given random source.
func NewDrawer(rnd *rand.Rand) *Drawer {
	return &Drawer{rnd: rnd}
}

// Draw selects one outcome from the table: a uniform value in
// [0, totalWeight) is matched against cumulative weights. If floating-point
// error lets the walk fall through, the table's first outcome is returned
// rather than an error.
func (d *Drawer) Draw(table Table) (Outcome, error) {
	if len(table) == 0 {
		return Outcome{}, ErrEmptyTable
	}

	r := d.rnd.Float64() * table.TotalWeight()

	var cumulative float64
	for _, o := range table {
		cumulative += o.Weight
		if cumulative >= r {
			return o, nil
		}
	}

	return table[0], nil
}
