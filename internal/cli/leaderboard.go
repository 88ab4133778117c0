package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/daemon"
	"github.com/cartquest/cartquest/internal/infra/metrics"
)

func init() {
	leaderboardCmd.Flags().BoolVar(&leaderboardJSON, "json", false, "Print the board as JSON")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardJSON bool

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <roster.yaml>",
	Short: "Rank a roster of weekly results",
	Long: `Rank a roster of weekly results by savings rate (70%) and
consistency (30%). Entrants with a weekly budget under the configured
floor are listed as disqualified.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	roster, err := loadRoster(args[0])
	if err != nil {
		return err
	}
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	board := cfg.Leaderboard.Policy().Rank(roster)
	metrics.RecordRanking(len(board.Disqualified))

	if leaderboardJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tSCORE\tSAVINGS\tCONSISTENCY\tSTREAK\t")
	for _, e := range board.Ranked {
		move := ""
		switch {
		case e.RankChange > 0:
			move = fmt.Sprintf("▲%d", e.RankChange)
		case e.RankChange < 0:
			move = fmt.Sprintf("▼%d", -e.RankChange)
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.0f%%\t%.0f%%\t%d\t%s\n",
			e.Rank, e.Username, e.Score*100, e.SavingsRate*100, e.Consistency*100, e.CurrentStreak, move)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(board.Disqualified) > 0 {
		fmt.Printf("\nBelow the %s weekly budget floor:", cfg.Leaderboard.Policy().MinWeeklyBudget.StringFixed(2))
		for _, e := range board.Disqualified {
			fmt.Printf(" %s", e.Username)
		}
		fmt.Println()
	}
	return nil
}
