package commands

import (
	"context"
	"fmt"

	"linkforge/pkg/filesearch"

	"github.com/spf13/cobra"
)

var scanDryRun bool

var scanCmd = &cobra.Command{
	Use:   "scan [dir...]",
	Short: "Register prebuilt libraries found in search directories",
	Long: `Walk the given directories, recognise library files by the target platform's
naming convention and record them in the crate store so that manifests can
depend on them by name. Paths matched by a .lfignore file are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LF == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := context.Background()

		found, err := filesearch.Search(args, LF.OS)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range found {
			fmt.Fprintf(out, "found %s-%s-%s\t%s\n", f.Name, f.Hash, f.Vers, f.Path)
		}
		if scanDryRun {
			return nil
		}

		if err := openStores(ctx); err != nil {
			return err
		}
		n, err := LF.Pipeline().Register(ctx, found)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered %d unit(s)\n", n)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "only list what would be registered")
	rootCmd.AddCommand(scanCmd)
}
