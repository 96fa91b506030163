package commands

import (
	"context"
	"fmt"

	"linkforge/pkg/manifest"
	"linkforge/pkg/target"

	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity [manifest]",
	Short: "Compute the link identity of a compilation unit",
	Long: `Collect the link metadata declared in the manifest, compute the crate
metadata hash and print the resulting identity and output filename. Nothing is linked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LF == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := context.Background()

		m, err := manifest.Load(args[0])
		if err != nil {
			return err
		}

		// 按名字给出的依赖需要 crate store
		for _, d := range m.Deps {
			if d.Path == "" {
				if err := openStores(ctx); err != nil {
					return err
				}
				break
			}
		}

		u, err := LF.Pipeline().Prepare(ctx, m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name:     %s\n", u.Identity.Name())
		fmt.Fprintf(out, "vers:     %s\n", u.Identity.Vers())
		fmt.Fprintf(out, "hash:     %s\n", u.Identity.ExtrasHash())
		fmt.Fprintf(out, "identity: %s\n", u.Identity)
		if m.Library {
			o := m.TargetOS(LF.OS)
			filename, err := target.DLLFilename(o, u.Identity)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "output:   %s (%s)\n", filename, o)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
}
