package commands

import (
	"fmt"
	"path/filepath"

	"linkforge/pkg/target"

	"github.com/spf13/cobra"
)

var libnameCmd = &cobra.Command{
	Use:   "libname [file...]",
	Short: "Split library filenames into name, metadata hash and version",
	Long: `Parse library artifact names (shared libraries for the target platform,
or archives) back into their name, crate metadata hash and version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LF == nil {
			return fmt.Errorf("app not initialized")
		}
		p, err := target.Lookup(LF.OS)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, file := range args {
			base := filepath.Base(file)
			name, hash, vers, ok := target.ArchiveName(base)
			if !ok {
				name, hash, vers, ok = p.LibName(base)
			}
			if !ok {
				return fmt.Errorf("%s: not a library filename for %s", file, LF.OS)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", base, name, hash, vers)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(libnameCmd)
}
