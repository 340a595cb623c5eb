package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
)

// errFailed marks a request the API answered with a non-2xx status. The
// body has already been printed.
var errFailed = errors.New("request failed")

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "GoWallet CLI tool",
		Long:          `A command line interface for operating the GoWallet API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("WALLET_URL", "http://localhost:8080"), "Base URL of the GoWallet API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("WALLET_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(ledgerCmd(opts), accountCmd(opts), tokenCmd(), migrateCmd())
	return rootCmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "consistency",
			Short: "Check that all entries net to zero",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return get(cmd, opts, "/api/v1/ledger/consistency")
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "Reconcile every account and print the report",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return get(cmd, opts, "/api/v1/ledger/reconciliation")
			},
		},
	)
	return cmd
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <account-id>",
			Short: "Show an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0]))
			},
		},
		&cobra.Command{
			Use:   "balance <account-id>",
			Short: "Show the current balance of an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance")
			},
		},
		&cobra.Command{
			Use:   "reconcile <account-id>",
			Short: "Compare the stored balance with the entry log",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconcile")
			},
		},
	)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret   string
		userID   string
		name     string
		role     string
		lifetime time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			if name == "" {
				name = userID
			}

			token, err := auth.NewJWTManager(secret, lifetime).Generate(&domain.User{
				ID:   userID,
				Name: name,
				Role: domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&userID, "user", "", "Operator ID")
	cmd.Flags().StringVar(&name, "name", "", "Operator display name, defaults to the ID")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "Operator role: admin, operator or viewer")
	cmd.Flags().DurationVar(&lifetime, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	migrationLogger := func(cmd *cobra.Command) zerolog.Logger {
		return logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if databaseURL == "" {
					return fmt.Errorf("--database-url or DATABASE_URL is required")
				}
				return postgres.RunMigrations(databaseURL, migrationLogger(cmd))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if databaseURL == "" {
					return fmt.Errorf("--database-url or DATABASE_URL is required")
				}
				return postgres.RunMigrationsDown(databaseURL, migrationLogger(cmd))
			},
		},
	)
	return cmd
}

func get(cmd *cobra.Command, opts *options, path string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(opts.baseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	out := cmd.OutOrStdout()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out = cmd.ErrOrStderr()
		fmt.Fprintf(out, "FAILED (status %d)\n", resp.StatusCode)
	}
	if err := printJSON(out, body); err != nil {
		fmt.Fprintln(out, string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errFailed
	}
	return nil
}

// printJSON writes raw JSON indented.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
