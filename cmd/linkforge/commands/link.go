package commands

import (
	"context"
	"fmt"

	"linkforge/pkg/manifest"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	linkParallel  int
	linkSaveTemps bool
)

var linkCmd = &cobra.Command{
	Use:   "link [manifest...]",
	Short: "Link compilation units into libraries or executables",
	Long: `Compute the link identity of every manifest, then invoke the system linker
for each unit. Units in one invocation are linked concurrently and must not depend
on each other; link dependents in a later invocation.

Linked units are recorded in the crate store, and libraries are published to the
artifact store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LF == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := context.Background()

		// 1. 读取清单
		manifests := make([]*manifest.Manifest, 0, len(args))
		for _, path := range args {
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			if linkSaveTemps || viper.GetBool("link.save_temps") {
				m.SaveTemps = true
			}
			manifests = append(manifests, m)
		}

		// 2. 打开 crate store 和产物仓库
		if err := openStores(ctx); err != nil {
			return err
		}

		// 3. 链接
		parallel := linkParallel
		if parallel <= 0 {
			parallel = LF.Parallelism
		}
		results, err := LF.Pipeline().Run(ctx, manifests, parallel)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.ArtifactHash.IsZero() {
				fmt.Fprintf(out, "linked %s -> %s\n", r.Identity, r.Output)
				continue
			}
			fmt.Fprintf(out, "linked %s -> %s (artifact %s)\n", r.Identity, r.Output, r.ArtifactHash.Short())
		}
		if n := LF.Sink.Count(""); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d warning(s) emitted\n", n)
		}
		return nil
	},
}

func init() {
	linkCmd.Flags().IntVarP(&linkParallel, "parallel", "j", 0, "number of concurrent linker invocations (default link.parallelism)")
	linkCmd.Flags().BoolVar(&linkSaveTemps, "save-temps", false, "keep intermediate object files")
	rootCmd.AddCommand(linkCmd)
}
