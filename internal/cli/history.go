package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"trips"},
	Short:   "List past trips",
	RunE:    runHistory,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a trip from the history (XP and savings are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	v := d.Store.Get()
	if len(v.History) == 0 {
		fmt.Println("No trips yet. Log one with 'cartquest trip'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTORE\tSPENT\tBUDGET\tSAVED\tXP")
	for i := len(v.History) - 1; i >= 0; i-- {
		e := v.History[i]
		xp := fmt.Sprintf("+%d", e.XPEarned)
		if e.StreakSaverUsed {
			xp += " (saver)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), e.StoreName,
			e.TotalSpent.StringFixed(2), e.Budget.StringFixed(2), e.Savings.StringFixed(2), xp)
	}
	return w.Flush()
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.DeleteHistoryEntry(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed trip %s\n", args[0])
	return nil
}
