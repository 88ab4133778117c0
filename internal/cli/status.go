package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, streak and savings",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	v := d.Store.Get()
	printProgress(os.Stdout, v)

	cur := v.Preferences.Currency
	if v.Preferences.Budget.IsZero() {
		fmt.Println("Budget: not set (run 'cartquest budget <amount>' to start earning XP)")
	} else {
		fmt.Printf("Budget: %s %s\n", v.Preferences.Budget.StringFixed(2), cur)
	}
	fmt.Printf("This week: %d XP │ spent %s %s\n", v.WeeklyXP, v.WeeklySpend.StringFixed(2), cur)
	fmt.Printf("Lifetime savings: %s %s\n", v.LifetimeSavings.StringFixed(2), cur)

	if len(v.Equipped) > 0 {
		slots := make([]string, 0, len(v.Equipped))
		for slot := range v.Equipped {
			slots = append(slots, string(slot))
		}
		slices.Sort(slots)
		fmt.Print("Wearing:")
		for _, slot := range slots {
			fmt.Printf(" %s=%s", slot, v.Equipped[domain.ItemType(slot)])
		}
		fmt.Println()
	}
	if n := len(v.ActiveList.Items); n > 0 {
		fmt.Printf("Active list: %d item(s), %s\n", n, domain.ItemsTotal(v.ActiveList.Items).StringFixed(2))
	}
	return nil
}
