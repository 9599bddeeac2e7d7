package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracker-go/internal/app"
	"tracker-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp reads the config and creates a TrackerApp. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.TrackerApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config (run 'tracker config init' first): %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	a, err := app.NewTrackerApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// runOp encodes args as the operation's JSON argument object, calls it, and
// renders the result in the --output format.
func runOp(cmd *cobra.Command, op string, args any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	return callRaw(cmd, op, raw)
}

func callRaw(cmd *cobra.Command, op string, raw json.RawMessage) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Call(cmd.Context(), op, raw)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("output")
	return app.Render(cmd.OutOrStdout(), result, format)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassphrase prompts on the terminal without echo. Piped input is read as
// one line so scripts can supply the passphrase.
func readPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !stdinIsTerminal() {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:          "tracker",
	Short:        "Habit and pomodoro tracker",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		cfg.LogDir = defaults.LogDir
		if url, _ := cmd.Flags().GetString("license-url"); url != "" {
			cfg.Entitlement.BaseURL = url
		}

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Base Dir:      %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:       %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Database:      %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Fprintf(out, "License URL:   %s\n", cfg.Entitlement.BaseURL)
		fmt.Fprintf(out, "License Store: %s\n", cfg.Entitlement.LicenseStore)
		fmt.Fprintf(out, "Backup Vault:  %s (%s)\n", cfg.Backup.Vault.Name, cfg.Backup.Vault.Type)
		fmt.Fprintf(out, "Encryption:    %s\n", cfg.Backup.Encryption.Type)
		return nil
	},
}

// call command
var callCmd = &cobra.Command{
	Use:   "call OPERATION [JSON|-]",
	Short: "Run one operation with a JSON argument object",
	Long: "Run one named operation. The argument is a JSON object; '-' reads it from stdin.\n" +
		"The result is printed as JSON (or YAML with --output yaml).",
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list || len(args) == 0 {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, op := range a.Operations() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", op.Name, op.Summary)
			}
			return nil
		}

		var raw []byte
		if len(args) == 2 {
			raw = []byte(args[1])
			if args[1] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading arguments: %w", err)
				}
				raw = data
			}
		}
		return callRaw(cmd, args[0], raw)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")

	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("license-url", "", "Base URL of the licensing backend")
	configCmd.AddCommand(configListCmd)

	callCmd.Flags().BoolP("list", "l", false, "List available operations")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(habitCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(licenseCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(backupCmd)
}
