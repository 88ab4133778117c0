package domain

// ─── Cosmetic Items ─────────────────────────────────────────────────────────

// ItemType is the slot a cosmetic item occupies. Each slot holds at most one
// equipped item.
type ItemType string

const (
	ItemHat        ItemType = "hat"
	ItemAccessory  ItemType = "accessory"
	ItemBackground ItemType = "background"
	ItemOutfit     ItemType = "outfit"
	ItemCostume    ItemType = "costume"
	ItemUtility    ItemType = "utility"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemHat, ItemAccessory, ItemBackground, ItemOutfit, ItemCostume, ItemUtility:
		return true
	}
	return false
}

// Equippable reports whether items of this type can be worn.
// Utility items are consumed, never equipped.
func (t ItemType) Equippable() bool {
	return t.Valid() && t != ItemUtility
}

// Rarity governs draw probability and presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RaritySpecial   Rarity = "special"
)

// CosmeticItem is a purchasable or drawable item. Price is in XP.
type CosmeticItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      ItemType `json:"type"`
	Rarity    Rarity   `json:"rarity"`
	IsPremium bool     `json:"is_premium"`
	Price     int64    `json:"price"`
}

// EquippedItems maps a slot to the ID of the owned item worn there.
type EquippedItems map[ItemType]string
