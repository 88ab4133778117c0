// Package lootbox resolves the randomized reward draw.
//
// A draw takes one uniform sample r in [0,1), walks a cumulative-weight
// tier table to pick a rarity, then picks uniformly within that tier's
// pool. With the default table r < 0.10 is legendary, r < 0.40 is epic and
// anything else is rare.
package lootbox

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/domain"
)

// Source is the randomness used by a draw. *rand.Rand from math/rand/v2
// satisfies it, so tests can pass a seeded generator.
type Source interface {
	Float64() float64
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// DefaultSource draws from the process-wide generator.
func DefaultSource() Source { return globalSource{} }

// Tier is one rarity band of the table.
type Tier struct {
	Rarity domain.Rarity         `json:"rarity"`
	Weight float64               `json:"weight"`
	Pool   []domain.CosmeticItem `json:"pool"`
}

// Table is walked in order; weights must sum to 1.
type Table []Tier

// DefaultTable builds the 10% legendary / 30% epic / 60% rare table from
// the built-in catalog.
func DefaultTable() Table {
	return Table{
		{Rarity: domain.RarityLegendary, Weight: 0.10, Pool: catalog.ByRarity(domain.RarityLegendary)},
		{Rarity: domain.RarityEpic, Weight: 0.30, Pool: catalog.ByRarity(domain.RarityEpic)},
		{Rarity: domain.RarityRare, Weight: 0.60, Pool: catalog.ByRarity(domain.RarityRare)},
	}
}

// ErrInvalidTable is returned for tables that cannot be drawn from.
var ErrInvalidTable = errors.New("invalid reward table")

// Validate checks that every tier has a pool and a non-negative weight and
// that the weights sum to 1.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	sum := 0.0
	for _, tier := range t {
		if tier.Weight < 0 {
			return fmt.Errorf("%w: tier %s has negative weight", ErrInvalidTable, tier.Rarity)
		}
		if len(tier.Pool) == 0 {
			return fmt.Errorf("%w: tier %s has an empty pool", ErrInvalidTable, tier.Rarity)
		}
		sum += tier.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weights sum to %g", ErrInvalidTable, sum)
	}
	return nil
}

// TierFor maps a sample r in [0,1) to a tier by cumulative weight.
func (t Table) TierFor(r float64) Tier {
	acc := 0.0
	for _, tier := range t {
		acc += tier.Weight
		if r < acc {
			return tier
		}
	}
	return t[len(t)-1]
}

// Draw picks one item. It consumes exactly one Float64 and one IntN from src.
func (t Table) Draw(src Source) (domain.CosmeticItem, float64, error) {
	if err := t.Validate(); err != nil {
		return domain.CosmeticItem{}, 0, err
	}
	r := src.Float64()
	tier := t.TierFor(r)
	return tier.Pool[src.IntN(len(tier.Pool))], r, nil
}

// Result is what a draw shows the user.
type Result struct {
	Item      domain.CosmeticItem `json:"item"`
	Duplicate bool                `json:"duplicate"`
	Roll      float64             `json:"roll"`
}

// Open draws an item and grants it into owned. An item that is already
// owned is still reported as won, but owned is left unchanged.
func (t Table) Open(src Source, owned map[string]bool) (Result, error) {
	item, roll, err := t.Draw(src)
	if err != nil {
		return Result{}, err
	}
	res := Result{Item: item, Roll: roll, Duplicate: owned[item.ID]}
	if !res.Duplicate {
		owned[item.ID] = true
	}
	return res, nil
}
