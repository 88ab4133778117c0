package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/domain"
)

func init() {
	rootCmd.AddCommand(itemsCmd, equipCmd, unequipCmd, lootboxCmd)
}

var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"inventory"},
	Short:   "List the items you own",
	RunE:    runItems,
}

var equipCmd = &cobra.Command{
	Use:   "equip <item-id>",
	Short: "Wear an owned item",
	Args:  cobra.ExactArgs(1),
	RunE:  runEquip,
}

var unequipCmd = &cobra.Command{
	Use:   "unequip <slot>",
	Short: "Take off whatever is worn in a slot (hat, accessory, background, outfit, costume)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnequip,
}

var lootboxCmd = &cobra.Command{
	Use:   "lootbox",
	Short: "Open a reward box",
	RunE:  runLootbox,
}

func runItems(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	v := d.Store.Get()
	if len(v.Owned) == 0 {
		fmt.Println("No items yet. Try 'cartquest shop' or 'cartquest lootbox'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tRARITY\t")
	for _, id := range v.Owned {
		it, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		mark := ""
		if v.Equipped[it.Type] == id {
			mark = "equipped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Type, it.Rarity, mark)
	}
	return w.Flush()
}

func runEquip(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.Equip(context.Background(), args[0]); err != nil {
		return err
	}
	it, _ := catalog.Lookup(args[0])
	fmt.Printf("Now wearing %s (%s)\n", it.Name, it.Type)
	return nil
}

func runUnequip(cmd *cobra.Command, args []string) error {
	slot := domain.ItemType(args[0])

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.Unequip(context.Background(), slot); err != nil {
		return err
	}
	fmt.Printf("Cleared %s slot\n", slot)
	return nil
}

func runLootbox(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Store.DrawLootbox(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("You got: %s [%s %s]\n", res.Item.Name, res.Item.Rarity, res.Item.Type)
	if res.Duplicate {
		fmt.Println("Already in your collection.")
	} else if slices.Contains([]domain.Rarity{domain.RarityEpic, domain.RarityLegendary}, res.Item.Rarity) {
		fmt.Printf("Equip it with 'cartquest equip %s'\n", res.Item.ID)
	}
	return nil
}
