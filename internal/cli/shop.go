package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/app/catalog"
)

func init() {
	shopCmd.AddCommand(shopBuyCmd)
	rootCmd.AddCommand(shopCmd)
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List items you can buy with XP",
	RunE:  runShop,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <item-id>",
	Short: "Buy an item with XP",
	Args:  cobra.ExactArgs(1),
	RunE:  runShopBuy,
}

func runShop(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	v := d.Store.Get()
	fmt.Printf("You have %d XP and %d streak saver(s)\n\n", v.XP, v.StreakSavers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tRARITY\tPRICE\t")
	for _, it := range catalog.ForSale() {
		mark := ""
		if d.Store.Owns(it.ID) {
			mark = "owned"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d XP\t%s\n", it.ID, it.Name, it.Type, it.Rarity, it.Price, mark)
	}
	return w.Flush()
}

func runShopBuy(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	item, err := d.Store.Purchase(context.Background(), args[0])
	if err != nil {
		return err
	}
	v := d.Store.Get()
	fmt.Printf("Bought %s for %d XP (%d XP left)\n", item.Name, item.Price, v.XP)
	return nil
}
