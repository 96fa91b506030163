package commands

import (
	"fmt"
	"strings"

	"linkforge/pkg/core"
	"linkforge/pkg/mangle"
	"linkforge/pkg/symbol"
	"linkforge/pkg/types"

	"github.com/spf13/cobra"
)

var (
	mangleType     string
	mangleExported bool
	mangleName     string
	mangleVers     string
	mangleHash     string
)

var mangleCmd = &cobra.Command{
	Use:   "mangle [path...]",
	Short: "Encode an item path into a linker symbol",
	Long: `Encode an item path (segments separated by "::" or given as separate
arguments) into a flat linker symbol.

With --type the symbol is suffixed with the symbol type hash computed from the
crate identity (--name, --vers, --hash) and the type, and --exported also appends the version.`,
	Example: `  linkforge mangle std::vec::push
  linkforge mangle std::vec::push --type 'Vec<int>' --name std --vers 0.6 --hash 0123456789abcdef --exported`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := splitPath(args)

		if mangleType == "" {
			fmt.Fprintln(cmd.OutOrStdout(), mangle.Mangle(path))
			return nil
		}

		// 1. crate 身份
		if mangleName == "" {
			return fmt.Errorf("--name is required with --type")
		}
		hash := types.MetaHash(mangleHash)
		if !hash.IsValid() {
			return fmt.Errorf("--hash must be %d hex digits, got %q", types.HashWidth, mangleHash)
		}
		if LF == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := symbol.NewContext(core.NewLinkIdentity(mangleName, mangleVers, hash), LF.Digest)

		// 2. 解析类型
		desc, err := symbol.ParseTypeDesc(mangleType)
		if err != nil {
			return err
		}
		typ, err := ctx.Intern(desc)
		if err != nil {
			return err
		}

		// 3. 生成符号
		fmt.Fprintln(cmd.OutOrStdout(), ctx.MangledName(path, typ, mangleExported))
		return nil
	},
}

var demangleCmd = &cobra.Command{
	Use:   "demangle [symbol...]",
	Short: "Decode linker symbols back into item paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range args {
			segs, err := mangle.Demangle(s)
			if err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(segs, "::"))
		}
		return nil
	},
}

// splitPath 把参数按 "::" 拆成路径段
func splitPath(args []string) []string {
	var path []string
	for _, a := range args {
		path = append(path, strings.Split(a, "::")...)
	}
	return path
}

func init() {
	mangleCmd.Flags().StringVar(&mangleType, "type", "", "entity type, e.g. 'Vec<int>'")
	mangleCmd.Flags().BoolVar(&mangleExported, "exported", false, "append the crate version (externally visible symbol)")
	mangleCmd.Flags().StringVar(&mangleName, "name", "", "crate name")
	mangleCmd.Flags().StringVar(&mangleVers, "vers", core.DefaultVers, "crate version")
	mangleCmd.Flags().StringVar(&mangleHash, "hash", "", "crate metadata hash (16 hex digits)")

	rootCmd.AddCommand(mangleCmd)
	rootCmd.AddCommand(demangleCmd)
}
