package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/domain"
)

func init() {
	prefsCmd.Flags().StringVar(&prefsTransport, "transport", "", "Default transport mode")
	prefsCmd.Flags().StringVar(&prefsStore, "store", "", "Default store name")
	prefsCmd.Flags().StringVar(&prefsCurrency, "currency", "", "Currency code shown next to amounts")
	rootCmd.AddCommand(budgetCmd, prefsCmd)
}

var (
	prefsTransport string
	prefsStore     string
	prefsCurrency  string
)

var budgetCmd = &cobra.Command{
	Use:   "budget <amount>",
	Short: "Set your per-trip budget (0 turns gamification off)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudget,
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change default trip preferences",
	RunE:  runPrefs,
}

func runBudget(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.SetBudget(context.Background(), amount); err != nil {
		return err
	}
	if amount.IsZero() {
		fmt.Println("Budget cleared. Trips will extend your streak but earn no XP.")
		return nil
	}
	fmt.Printf("Budget set to %s\n", amount.StringFixed(2))
	return nil
}

func runPrefs(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	p := d.Store.Get().Preferences
	changed := false
	if prefsTransport != "" {
		p.DefaultTransport = domain.TransportMode(prefsTransport)
		changed = true
	}
	if cmd.Flags().Changed("store") {
		p.DefaultStore = prefsStore
		changed = true
	}
	if prefsCurrency != "" {
		p.Currency = prefsCurrency
		changed = true
	}
	if changed {
		if err := d.Store.SetPreferences(context.Background(), p); err != nil {
			return err
		}
	}

	fmt.Printf("Budget:    %s %s\n", p.Budget.StringFixed(2), p.Currency)
	fmt.Printf("Transport: %s\n", p.DefaultTransport)
	fmt.Printf("Store:     %s\n", p.DefaultStore)
	return nil
}
