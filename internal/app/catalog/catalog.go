// Package catalog is the built-in list of cosmetic items.
// Prices are in XP. Premium items cannot be bought; they only come out of
// the reward draw.
package catalog

import (
	"slices"

	"github.com/cartquest/cartquest/internal/domain"
)

// StreakSaverID is the consumable that forgives one over-budget trip.
const StreakSaverID = "streak-saver"

// Items is the built-in catalog.
var Items = []domain.CosmeticItem{
	// Hats
	{ID: "hat-beanie", Name: "Knit Beanie", Type: domain.ItemHat, Rarity: domain.RarityCommon, Price: 50},
	{ID: "hat-chef", Name: "Chef's Toque", Type: domain.ItemHat, Rarity: domain.RarityRare, Price: 150},
	{ID: "hat-crown", Name: "Coupon Crown", Type: domain.ItemHat, Rarity: domain.RarityEpic, Price: 400},
	{ID: "hat-halo", Name: "Golden Halo", Type: domain.ItemHat, Rarity: domain.RarityLegendary, IsPremium: true},

	// Accessories
	{ID: "acc-tote", Name: "Canvas Tote", Type: domain.ItemAccessory, Rarity: domain.RarityCommon, Price: 40},
	{ID: "acc-calculator", Name: "Pocket Calculator", Type: domain.ItemAccessory, Rarity: domain.RarityRare, Price: 120},
	{ID: "acc-scanner", Name: "Barcode Scanner", Type: domain.ItemAccessory, Rarity: domain.RarityEpic, IsPremium: true},

	// Backgrounds
	{ID: "bg-market", Name: "Farmers Market", Type: domain.ItemBackground, Rarity: domain.RarityCommon, Price: 80},
	{ID: "bg-orchard", Name: "Orchard at Dusk", Type: domain.ItemBackground, Rarity: domain.RarityRare, Price: 200},
	{ID: "bg-vault", Name: "Savings Vault", Type: domain.ItemBackground, Rarity: domain.RarityLegendary, IsPremium: true},

	// Outfits
	{ID: "outfit-apron", Name: "Striped Apron", Type: domain.ItemOutfit, Rarity: domain.RarityRare, Price: 180},
	{ID: "outfit-tux", Name: "Thrifty Tuxedo", Type: domain.ItemOutfit, Rarity: domain.RarityEpic, IsPremium: true},

	// Costumes
	{ID: "costume-carrot", Name: "Carrot Suit", Type: domain.ItemCostume, Rarity: domain.RarityEpic, Price: 500},
	{ID: "costume-piggybank", Name: "Piggy Bank", Type: domain.ItemCostume, Rarity: domain.RarityLegendary, IsPremium: true},
	{ID: "costume-founder", Name: "Founding Shopper", Type: domain.ItemCostume, Rarity: domain.RaritySpecial, IsPremium: true},

	// Utility
	{ID: StreakSaverID, Name: "Streak Saver", Type: domain.ItemUtility, Rarity: domain.RarityCommon, Price: 100},
}

// Lookup returns the item with the given ID.
func Lookup(id string) (domain.CosmeticItem, bool) {
	i := slices.IndexFunc(Items, func(it domain.CosmeticItem) bool { return it.ID == id })
	if i < 0 {
		return domain.CosmeticItem{}, false
	}
	return Items[i], true
}

// ByRarity returns the non-utility items of the given rarity, in catalog
// order.
func ByRarity(r domain.Rarity) []domain.CosmeticItem {
	var out []domain.CosmeticItem
	for _, it := range Items {
		if it.Rarity == r && it.Type != domain.ItemUtility {
			out = append(out, it)
		}
	}
	return out
}

// ForSale returns the items that can be bought with XP.
func ForSale() []domain.CosmeticItem {
	var out []domain.CosmeticItem
	for _, it := range Items {
		if !it.IsPremium {
			out = append(out, it)
		}
	}
	return out
}
