// Package main loads the ingredient and tag catalog into the database and
// optionally creates users with fresh auth tokens.
//
// Usage:
//
//	DB_DSN=./data/foodgram.db go run ./cmd/seed
//	go run ./cmd/seed --data ./data --users alice,bob
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/darkodi/foodgram/internal/config"
	"github.com/darkodi/foodgram/internal/repository"
	"github.com/darkodi/foodgram/internal/seed"
)

var (
	dataDir   string
	usernames []string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load ingredients, tags and test users into the database.",
	Long: `Loads ingredients.json and tags.json from the data directory. Rows that
already exist are skipped, so the command can be rerun.

Example:
  seed --data ./data --users alice,bob`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Opening %s database: %s\n", cfg.Database.Driver, cfg.Database.DSN)
		repo, err := repository.New(&cfg.Database)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer repo.Close()

		ctx := cmd.Context()
		if err := loadFile(ctx, out, repo, "ingredients.json", seed.Ingredients); err != nil {
			return err
		}
		if err := loadFile(ctx, out, repo, "tags.json", seed.Tags); err != nil {
			return err
		}

		if len(usernames) == 0 {
			return nil
		}
		created, err := seed.Users(ctx, repo, usernames)
		if err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		for _, u := range created {
			fmt.Fprintf(out, "user %-16s token %s\n", u.Username, u.AuthToken)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&dataDir, "data", "data", "directory holding ingredients.json and tags.json")
	rootCmd.Flags().StringSliceVar(&usernames, "users", nil, "comma separated usernames to create")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type loader func(ctx context.Context, store seed.Store, r io.Reader) (seed.Result, error)

func loadFile(ctx context.Context, out io.Writer, repo *repository.Repository, name string, load loader) error {
	path := filepath.Join(dataDir, name)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(out, "%s not found, skipping\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := load(ctx, repo, f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	fmt.Fprintf(out, "%s: %d created, %d already present\n", name, res.Created, res.Skipped)
	return nil
}
