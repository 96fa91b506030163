package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"linkforge/pkg/core"
	"linkforge/pkg/target"
	"linkforge/pkg/types"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish [file...]",
	Short: "Store library artifacts in the artifact store",
	Long: `Copy linked libraries into the artifact store. When the filename follows the
library naming convention, the content hash is also recorded against the unit in
the crate store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := openStores(ctx); err != nil {
			return err
		}
		p := LF.Pipeline()

		for _, file := range args {
			id := identityFromFilename(file)
			hash, err := p.Publish(ctx, id, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", hash, file)
		}
		return nil
	},
}

// identityFromFilename 按命名约定还原链接身份；不符合约定时返回零值
func identityFromFilename(file string) core.LinkIdentity {
	name, hash, vers, ok := target.ArchiveName(file)
	if !ok {
		if p, err := target.Lookup(LF.OS); err == nil {
			name, hash, vers, ok = p.LibName(file)
		}
	}
	if !ok {
		return core.LinkIdentity{}
	}
	return core.NewLinkIdentity(name, vers, types.MetaHash(hash))
}

var fetchOutput string

var fetchCmd = &cobra.Command{
	Use:   "fetch [hash]",
	Short: "Retrieve an artifact from the artifact store",
	Long:  `Retrieve an artifact by its content hash (a unique prefix is enough) and write it to stdout or to --output.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := openStores(ctx); err != nil {
			return err
		}

		// 1. 短哈希展开
		full, err := LF.Store.ExpandHash(ctx, types.HashPrefix(args[0]))
		if err != nil {
			return fmt.Errorf("invalid artifact argument '%s': %w", args[0], err)
		}

		// 2. 读取
		reader, err := LF.Store.Get(ctx, full)
		if err != nil {
			return err
		}
		defer reader.Close()

		// 3. 写出
		var w io.Writer = cmd.OutOrStdout()
		if fetchOutput != "" {
			if err := os.MkdirAll(filepath.Dir(fetchOutput), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(fetchOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if _, err := io.Copy(w, reader); err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write the artifact to this file instead of stdout")
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(fetchCmd)
}
