package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	backupsCmd.AddCommand(backupsRestoreCmd)
	rootCmd.AddCommand(backupsCmd)
}

var errNoBackups = errors.New("backups need the sqlite storage backend")

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List saved progress revisions",
	RunE:  runBackups,
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Roll progress back to a saved revision",
	Long: `Roll progress back to a saved revision. Stop any running
'cartquest serve' first; it would overwrite the restored state on its
next save.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupsRestore,
}

func runBackups(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	if d.DB == nil {
		return errNoBackups
	}

	revs, err := d.DB.Revisions(context.Background(), d.Config.Profile.Name)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Println("No revisions saved yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tBYTES")
	for _, r := range revs {
		fmt.Fprintf(w, "%d\t%s\t%d\n", r.ID, r.SavedAt.Local().Format("2006-01-02 15:04:05"), r.Size)
	}
	return w.Flush()
}

func runBackupsRestore(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid revision id %q", args[0])
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	if d.DB == nil {
		return errNoBackups
	}

	if err := d.DB.RestoreRevision(context.Background(), d.Config.Profile.Name, id); err != nil {
		return err
	}
	fmt.Printf("Restored revision %d\n", id)
	return nil
}
