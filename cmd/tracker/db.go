package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tracker-go/internal/app"
	"tracker-go/internal/config"
)

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect, back up and restore the tracker database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database location and schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path, status, err := a.DatabaseStatus()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s\n", path)
		fmt.Fprintf(out, "Schema:   version %d of %d", status.Current, status.Latest)
		if status.Dirty {
			fmt.Fprint(out, " (dirty)")
		}
		fmt.Fprintln(out)
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database into the configured vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", name)
		return nil
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots in the vault, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListBackups(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots stored.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore SNAPSHOT",
	Short: "Restore a snapshot to a new database file",
	Long: "Restore a snapshot to --to (default: restored-<SNAPSHOT> in the data directory).\n" +
		"The live database is never overwritten; swap the files while tracker is not running.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dest, _ := cmd.Flags().GetString("to")
		if dest == "" {
			path, _, err := a.DatabaseStatus()
			if err != nil {
				return err
			}
			dest = filepath.Join(filepath.Dir(path), "restored-"+args[0])
		}

		var passphrase string
		if a.BackupsEncrypted() {
			if passphrase, err = readPassphrase(cmd, "Backup passphrase: "); err != nil {
				return err
			}
		}

		if err := a.RestoreBackup(cmd.Context(), args[0], passphrase, dest); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", args[0], dest)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backup encryption keys",
}

var backupKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the age key pair used to seal snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if cfg.Backup.Encryption.Type == "none" {
			return fmt.Errorf("backup encryption is disabled in %s", defaults.ConfigPath)
		}

		passphrase, err := readPassphrase(cmd, "New passphrase: ")
		if err != nil {
			return err
		}
		if stdinIsTerminal() {
			confirm, err := readPassphrase(cmd, "Repeat passphrase: ")
			if err != nil {
				return err
			}
			if confirm != passphrase {
				return fmt.Errorf("passphrases do not match")
			}
		}

		if err := app.GenerateKeys(cfg.Backup.Encryption, passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Public key:  %s\n", cfg.Backup.Encryption.PublicKeyPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Private key: %s (passphrase protected)\n", cfg.Backup.Encryption.PrivateKeyPath)
		return nil
	},
}

func init() {
	dbRestoreCmd.Flags().String("to", "", "Path of the restored database file")
	dbCmd.AddCommand(dbStatusCmd, dbBackupCmd, dbListCmd, dbRestoreCmd)
	backupCmd.AddCommand(backupKeygenCmd)
}
