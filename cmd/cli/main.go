package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
)

type options struct {
	baseURL string
	user    string
	token   string
	timeout time.Duration
	asJSON  bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "walletledger-cli",
		Short:         "WalletLedger CLI tool",
		Long:          `A command line interface for inspecting wallets through the WalletLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("WALLETLEDGER_URL", "http://localhost:8080"), "Base URL of the WalletLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.user, "user", os.Getenv("WALLETLEDGER_USER"), "User id sent as "+middleware.UserIDHeader)
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("WALLETLEDGER_TOKEN"), "Bearer token, takes precedence over --user")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print raw JSON")

	rootCmd.AddCommand(walletsCmd(opts), reportCmd(opts), tokenCmd())
	return rootCmd
}

func walletsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Wallet operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List wallets, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var wallets []dto.WalletResponse
				if err := newClient(opts).get(cmd.Context(), "/api/v1/wallets", &wallets); err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), wallets)
				}
				printWallets(cmd.OutOrStdout(), wallets)
				return nil
			},
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Show totals across wallets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var summary dto.SummaryResponse
				if err := newClient(opts).get(cmd.Context(), "/api/v1/wallets/summary", &summary); err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), summary)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Wallets:        %d\n", len(summary.Wallets))
				fmt.Fprintf(w, "Balance:        %s\n", summary.TotalBalance)
				fmt.Fprintf(w, "Total income:   %s\n", summary.TotalIncome)
				fmt.Fprintf(w, "Total expenses: %s\n", summary.TotalExpenses)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reconcile <wallet-id>",
			Short: "Check a wallet's totals against its transactions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var result dto.ReconciliationResponse
				if err := newClient(opts).get(cmd.Context(), "/api/v1/wallets/"+args[0]+"/reconciliation", &result); err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), result)
				}
				printReconciliation(cmd.OutOrStdout(), &result)
				if !result.IsReconciled {
					return fmt.Errorf("wallet %s is out of balance by %s", result.WalletID, result.Difference)
				}
				return nil
			},
		},
	)

	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Reconcile every wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report dto.ReportResponse
			if err := newClient(opts).get(cmd.Context(), "/api/v1/reconciliation", &report); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Checked %d wallets, %d reconciled\n", report.TotalWallets, report.ReconciledWallets)
			for _, d := range report.Discrepancies {
				printReconciliation(w, d)
			}
			if !report.Consistent {
				return errors.New("reconciliation FAILED")
			}
			fmt.Fprintln(w, "Reconciliation PASSED")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token utilities",
	}

	var (
		userID string
		email  string
		ttl    time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed access token using JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).Generate(&domain.User{ID: userID, Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&userID, "user", "", "User id to embed in the token")
	issueCmd.Flags().StringVar(&email, "email", "", "Optional email claim")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	_ = issueCmd.MarkFlagRequired("user")

	cmd.AddCommand(issueCmd)
	return cmd
}

type apiClient struct {
	opts *options
	http *http.Client
}

func newClient(opts *options) *apiClient {
	return &apiClient{opts: opts, http: &http.Client{Timeout: opts.timeout}}
}

// get fetches path and decodes the envelope's data into v.
func (c *apiClient) get(ctx context.Context, path string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.opts.baseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case c.opts.token != "":
		req.Header.Set("Authorization", "Bearer "+c.opts.token)
	case c.opts.user != "":
		req.Header.Set(middleware.UserIDHeader, c.opts.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Msg     string          `json:"msg"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	if !env.Success {
		return fmt.Errorf("%s (status %d)", env.Msg, resp.StatusCode)
	}
	if v == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, v)
}

func printWallets(out io.Writer, wallets []dto.WalletResponse) {
	if len(wallets) == 0 {
		fmt.Fprintln(out, "No wallets.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBALANCE\tINCOME\tEXPENSES")
	for _, wallet := range wallets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wallet.ID, truncate(wallet.Name, 24), wallet.Amount, wallet.TotalIncome, wallet.TotalExpenses)
	}
	_ = w.Flush()
}

func printReconciliation(out io.Writer, r *dto.ReconciliationResponse) {
	status := "OK"
	if !r.IsReconciled {
		status = "MISMATCH"
	}
	fmt.Fprintf(out, "%s %s: recorded %s (income %s, expenses %s), calculated %s (income %s, expenses %s), difference %s\n",
		status, r.WalletID,
		r.RecordedAmount, r.RecordedIncome, r.RecordedExpenses,
		r.CalculatedAmount, r.CalculatedIncome, r.CalculatedExpenses,
		r.Difference)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
