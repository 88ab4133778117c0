package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cartquest/cartquest/internal/app/progression"
	"github.com/cartquest/cartquest/internal/app/store"
)

// ─── Level Bar ──────────────────────────────────────────────────────────────
// Renders: Level 2 [██████████████░░░░░░░░░░░░░░░░] 49% │ 76 XP to level 3

const barWidth = 30 // Characters for the progress bar

// levelBar draws the progress toward the next level. pct 100 is the
// max-level sentinel and draws a full bar.
func levelBar(pct int) string {
	pct = max(0, min(pct, 100))
	filled := pct * barWidth / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// printProgress writes the level, streak and savings summary of v.
func printProgress(w io.Writer, v store.View) {
	if v.Level >= progression.MaxLevel {
		fmt.Fprintf(w, "Level %d %s MAX │ %d XP\n", v.Level, levelBar(v.Progress), v.XP)
	} else {
		fmt.Fprintf(w, "Level %d %s %d%% │ %d XP to level %d\n",
			v.Level, levelBar(v.Progress), v.Progress, v.XPToNextLevel, v.Level+1)
	}
	fmt.Fprintf(w, "Streak: %d │ Streak savers: %d\n", v.Streak, v.StreakSavers)
}
