package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/app/settlement"
	"github.com/cartquest/cartquest/internal/app/store"
	"github.com/cartquest/cartquest/internal/domain"
)

func init() {
	tripCmd.Flags().StringVar(&tripCost, "cost", "", "Final cost of the trip (overrides item prices)")
	tripCmd.Flags().StringVar(&tripTransport, "transport", "", "walk, bike, transit, car or delivery")
	tripCmd.Flags().StringVar(&tripTransportCost, "transport-cost", "", "Cost of getting to the store")
	tripCmd.Flags().StringVar(&tripStore, "store", "", "Store name")
	tripCmd.Flags().StringArrayVar(&tripItems, "item", nil, "Item as name[:qty[:price]] (repeatable; default: active list)")
	tripCmd.Flags().StringVar(&tripOnOverspend, "on-overspend", "ask", "When over budget with streak savers: ask, use-saver or break-streak")
	rootCmd.AddCommand(tripCmd)
}

var (
	tripCost          string
	tripTransport     string
	tripTransportCost string
	tripStore         string
	tripItems         []string
	tripOnOverspend   string
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Log a shopping trip and settle it against the budget",
	Example: `  cartquest trip --cost 82.40
  cartquest trip --item milk:2:1.25 --item bread:1:3.10 --transport bike`,
	RunE: runTrip,
}

func runTrip(cmd *cobra.Command, args []string) error {
	in, err := tripInput()
	if err != nil {
		return err
	}
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
	out, err := d.Store.SubmitTrip(ctx, in)
	if err != nil {
		return err
	}
	return finishTrip(ctx, d.Store, out, decide, os.Stdout)
}

func tripInput() (store.TripInput, error) {
	var in store.TripInput
	items, err := parseItems(tripItems)
	if err != nil {
		return in, err
	}
	in.Items = items
	in.TransportMode = domain.TransportMode(strings.ToLower(tripTransport))
	in.StoreName = tripStore
	if tripCost != "" {
		c, err := parseAmount(tripCost)
		if err != nil {
			return in, err
		}
		in.CostOverride = &c
	}
	if tripTransportCost != "" {
		c, err := parseAmount(tripTransportCost)
		if err != nil {
			return in, err
		}
		in.TransportCost = c
	}
	return in, nil
}

// decider picks how to resolve an over-budget trip.
type decider func(savers int) (settlement.Decision, error)

// overspendDecider maps the --on-overspend flag to a decider. "ask"
// prompts on in and reads the answer.
func overspendDecider(mode string, in io.Reader, out io.Writer) (decider, error) {
	switch mode {
	case "use-saver":
		return func(int) (settlement.Decision, error) { return settlement.DecisionUseSaver, nil }, nil
	case "break-streak":
		return func(int) (settlement.Decision, error) { return settlement.DecisionBreakStreak, nil }, nil
	case "ask":
		return func(savers int) (settlement.Decision, error) {
			fmt.Fprintf(out, "Over budget! Use a streak saver to keep your streak? (%d left) [y/N]: ", savers)
			sc := newLineScanner(in)
			if !sc.Scan() {
				return settlement.DecisionBreakStreak, nil
			}
			switch strings.ToLower(strings.TrimSpace(sc.Text())) {
			case "y", "yes":
				return settlement.DecisionUseSaver, nil
			}
			return settlement.DecisionBreakStreak, nil
		}, nil
	}
	return nil, fmt.Errorf("invalid --on-overspend %q (want ask, use-saver or break-streak)", mode)
}

// finishTrip resolves a pending streak decision if needed and prints the
// settled trip. The pending decision lives only in this process, so it
// is always resolved before returning.
func finishTrip(ctx context.Context, st *store.Store, out settlement.Outcome, decide decider, w io.Writer) error {
	if !out.Settled() {
		decision, err := decide(out.State.StreakSavers)
		if err != nil {
			return err
		}
		out, err = st.ResolveStreakDecision(ctx, decision)
		if err != nil {
			return err
		}
	}
	printOutcome(w, out, st.Get())
	if err := st.LastSaveError(); err != nil {
		fmt.Fprintf(w, "Warning: progress was not saved: %v\n", err)
	}
	return nil
}

func printOutcome(w io.Writer, out settlement.Outcome, v store.View) {
	e := out.Entry
	cur := v.Preferences.Currency
	fmt.Fprintf(w, "Trip %s: spent %s %s", e.ID, e.TotalSpent.StringFixed(2), cur)
	if e.Budget.IsPositive() {
		fmt.Fprintf(w, " of %s", e.Budget.StringFixed(2))
	}
	fmt.Fprintln(w)

	switch {
	case e.Budget.IsZero():
		fmt.Fprintln(w, "No budget set, streak extended.")
	case out.Result.UnderBudget:
		fmt.Fprintf(w, "Saved %s (%s%%) │ +%d XP\n", e.Savings.StringFixed(2), out.Result.SavingsPercentage.StringFixed(1), e.XPEarned)
	case out.StreakSaverUsed:
		fmt.Fprintln(w, "Over budget. Streak saver used, streak kept.")
	default:
		fmt.Fprintln(w, "Over budget. Streak reset.")
	}
	if out.LeveledUp {
		fmt.Fprintf(w, "Level up! You are now level %d.\n", v.Level)
	}
	printProgress(w, v)
}
