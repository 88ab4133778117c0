package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/app/achievement"
)

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"badges"},
	Short:   "Show earned and locked badges",
	RunE:    runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	unlocked := make(map[string]time.Time)
	for _, a := range d.Store.Get().Achievements {
		unlocked[a.ID] = a.UnlockedAt
	}
	defs := achievement.All()
	fmt.Printf("%d of %d badges earned\n\n", len(unlocked), len(defs))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, def := range defs {
		if at, ok := unlocked[def.ID]; ok {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Icon, def.Name, def.Category, at.Local().Format("2006-01-02"))
			continue
		}
		fmt.Fprintf(w, "🔒\t%s\t%s\t\n", def.Name, def.Category)
	}
	return w.Flush()
}
