package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/cli"
	"github.com/pdiddy/pdfebc-cli/internal/launcher"
)

var runserverCmd = &cobra.Command{
	Use:   "runserver -h <host> -p <port>",
	Short: "Launch the pdfebc-web frontend",
	Long: `Runserver validates the host and port and hands them to the pdfebc-web
frontend, which binds the listener and serves until it exits. The frontend
owns the terminal for its lifetime; its exit status becomes this command's
exit status.

The frontend binary is resolved on PATH and can be overridden with the
server.binary config key or PDFEBC_SERVER_BINARY.`,
	RunE: runRunserver,
}

func init() {
	// Registered before cobra's default help flag so -h stays free for the
	// host shorthand. Help remains reachable as --help.
	runserverCmd.Flags().Bool("help", false, "help for runserver")

	runserverCmd.Flags().StringP("host", "h", "", "hostname or IP the frontend binds to")
	runserverCmd.Flags().StringP("port", "p", "", "TCP port the frontend binds to (0-65535)")

	rootCmd.AddCommand(runserverCmd)
}

func runRunserver(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return cli.Usagef("unexpected argument %q", args[0])
	}
	if !cmd.Flags().Changed("host") {
		return cli.Usagef("required flag --host not set")
	}
	if !cmd.Flags().Changed("port") {
		return cli.Usagef("required flag --port not set")
	}

	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetString("port")

	cfg, err := launcher.ParseConfig(host, port)
	if err != nil {
		return err
	}
	cfg.Binary = viper.GetString("server.binary")

	return launcher.New(cfg.Binary, os.Stdout).Launch(cfg)
}
