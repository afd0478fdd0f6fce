// Package cli implements the assetfix command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes. A fatal MySQL error exits with its error number instead.
const (
	exitSuccess = 0
	exitFailure = 1
	exitConfig  = 2
)

// errConfig marks configuration errors so that they exit with exitConfig.
var errConfig = errors.New("configuration error")

// app carries the state shared by the commands of one root command.
type app struct {
	v          *viper.Viper
	configFile string
}

// NewRootCmd creates the top-level "assetfix" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "assetfix",
		Short: "Repair the CMS asset permission tree",
		Long: "assetfix backs up the asset, category and content tables, resets the\n" +
			"asset table from the seed script and rebuilds the nested-set tree from\n" +
			"the installed extensions, categories and articles.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.registerFlags(root)

	root.AddCommand(a.newRunCmd())
	root.AddCommand(a.newBackupCmd())
	root.AddCommand(a.newRestoreCmd())
	root.AddCommand(a.newSeedCmd())
	root.AddCommand(a.newVerifyCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command with args and returns the process exit
// code. Errors are printed to stderr.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, NewRootCmd(), args, os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "assetfix: %s\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, errConfig) {
		return exitConfig
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if code := int(myErr.Number % 256); code != 0 {
			return code
		}
	}
	return exitFailure
}
