package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"comanda/internal/config"
	"comanda/internal/infrastructure/migrations"
	"comanda/internal/infrastructure/mysql"
)

const migrationDir = "internal/infrastructure/migrations/sql"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the comanda database schema",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("COMANDA_CONFIG"), "config file path")

	dsn := func() (string, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", err
		}
		return mysql.DSN(cfg.Database), nil
	}

	rootCmd.AddCommand(
		upCommand(dsn),
		downCommand(dsn),
		versionCommand(dsn),
		createCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func upCommand(dsn func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dsn()
			if err != nil {
				return err
			}
			if err := migrations.Up(d); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	}
}

func downCommand(dsn func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			d, err := dsn()
			if err != nil {
				return err
			}
			if err := migrations.Down(d, steps); err != nil {
				return err
			}
			cmd.Printf("Rolled back %d migration(s)\n", steps)
			return nil
		},
	}
}

func versionCommand(dsn func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dsn()
			if err != nil {
				return err
			}
			version, dirty, err := migrations.Version(d)
			if err != nil {
				return err
			}
			cmd.Printf("version=%d dirty=%t\n", version, dirty)
			return nil
		},
	}
}

func createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "create empty up/down sql scripts with the next sequence number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := nextVersion(migrationDir)
			if err != nil {
				return err
			}

			name := strings.ReplaceAll(strings.ToLower(args[0]), " ", "_")
			up := filepath.Join(migrationDir, fmt.Sprintf("%06d_%s.up.sql", next, name))
			down := filepath.Join(migrationDir, fmt.Sprintf("%06d_%s.down.sql", next, name))

			if err := os.WriteFile(up, []byte{}, 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(down, []byte{}, 0o644); err != nil {
				return err
			}

			cmd.Println("Created SQL up script:", up)
			cmd.Println("Created SQL down script:", down)
			return nil
		},
	}
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading migration directory: %w", err)
	}

	highest := 0
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(prefix); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
