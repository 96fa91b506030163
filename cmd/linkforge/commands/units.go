package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"linkforge/pkg/cstore"

	"github.com/spf13/cobra"
)

var (
	unitsName  string
	unitsLimit int
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List compilation units recorded in the crate store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := openStores(ctx); err != nil {
			return err
		}

		var (
			units []cstore.Unit
			err   error
		)
		if unitsName != "" {
			units, err = LF.Repo.FindByName(ctx, unitsName)
		} else {
			units, err = LF.Repo.List(ctx, unitsLimit)
		}
		if err != nil {
			return err
		}
		if len(units) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No units recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERS\tHASH\tKIND\tARTIFACT\tPATH")
		for _, u := range units {
			artifact := u.ArtifactHash
			if len(artifact) > 8 {
				artifact = artifact[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", u.Name, u.Vers, u.ExtrasHash, u.Kind, artifact, u.Path)
		}
		return w.Flush()
	},
}

func init() {
	unitsCmd.Flags().StringVar(&unitsName, "name", "", "only show units with this crate name")
	unitsCmd.Flags().IntVar(&unitsLimit, "limit", 0, "maximum number of units to show (0 = all)")
	rootCmd.AddCommand(unitsCmd)
}
