package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/domain"
)

func init() {
	listsSaveCmd.Flags().StringVar(&listBudget, "budget", "", "Budget for this list (default: your budget at submit time)")
	listsSaveCmd.Flags().StringVar(&tripCost, "cost", "", "Final cost (overrides item prices)")
	listsSaveCmd.Flags().StringVar(&tripTransport, "transport", "", "walk, bike, transit, car or delivery")
	listsSaveCmd.Flags().StringVar(&tripTransportCost, "transport-cost", "", "Cost of getting to the store")
	listsSaveCmd.Flags().StringVar(&tripStore, "store", "", "Store name")
	listsSaveCmd.Flags().StringArrayVar(&tripItems, "item", nil, "Item as name[:qty[:price]] (repeatable; default: active list)")

	listsSubmitCmd.Flags().StringVar(&tripOnOverspend, "on-overspend", "ask", "When over budget with streak savers: ask, use-saver or break-streak")

	listsEditCmd.Flags().StringVar(&listSummary, "summary", "", "Short description of the list")

	listsCmd.AddCommand(listsEditCmd, listsSaveCmd, listsSubmitCmd, listsRmCmd)
	rootCmd.AddCommand(listsCmd)
}

var (
	listBudget  string
	listSummary string
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show the active list and saved lists",
	RunE:  runLists,
}

var listsEditCmd = &cobra.Command{
	Use:     "edit <item>...",
	Short:   "Replace the active list (items as name[:qty[:price]])",
	Example: `  cartquest lists edit milk:2:1.25 bread eggs:12`,
	RunE:    runListsEdit,
}

var listsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a trip for later and clear the active list",
	RunE:  runListsSave,
}

var listsSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Settle a saved list as a trip",
	Args:  cobra.ExactArgs(1),
	RunE:  runListsSubmit,
}

var listsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Discard a saved list",
	Args:  cobra.ExactArgs(1),
	RunE:  runListsRm,
}

func runLists(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	v := d.Store.Get()
	if len(v.ActiveList.Items) > 0 {
		fmt.Printf("Active list: %s\n", v.ActiveList.Summary)
		for _, it := range v.ActiveList.Items {
			fmt.Printf("  %d × %s", max(it.Quantity, 1), it.Name)
			if it.Price != nil {
				fmt.Printf(" @ %s", it.Price.StringFixed(2))
			}
			fmt.Println()
		}
		fmt.Println()
	}

	if len(v.SavedLists) == 0 {
		fmt.Println("No saved lists.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tSTORE\tITEMS\tTOTAL\tSUMMARY")
	for _, l := range v.SavedLists {
		total := domain.ItemsTotal(l.Items).Add(l.TransportCost)
		if l.CostOverride != nil {
			total = *l.CostOverride
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.CreatedAt.Local().Format("2006-01-02"), l.StoreName, len(l.Items), total.StringFixed(2), l.Summary)
	}
	return w.Flush()
}

func runListsEdit(cmd *cobra.Command, args []string) error {
	items, err := parseItems(args)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.ListItem{}
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.SetActiveList(context.Background(), items, listSummary); err != nil {
		return err
	}
	fmt.Printf("Active list has %d item(s), %s priced\n", len(items), domain.ItemsTotal(items).StringFixed(2))
	return nil
}

func runListsSave(cmd *cobra.Command, args []string) error {
	in, err := tripInput()
	if err != nil {
		return err
	}
	if listBudget != "" {
		b, err := parseAmount(listBudget)
		if err != nil {
			return err
		}
		in.Budget = &b
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	list, err := d.Store.SaveList(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Saved list %s\n", list.ID)
	return nil
}

func runListsSubmit(cmd *cobra.Command, args []string) error {
	decide, err := overspendDecider(tripOnOverspend, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	out, err := d.Store.SubmitSavedList(ctx, args[0])
	if err != nil {
		return err
	}
	return finishTrip(ctx, d.Store, out, decide, os.Stdout)
}

func runListsRm(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.DeleteSavedList(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Discarded list %s\n", args[0])
	return nil
}
