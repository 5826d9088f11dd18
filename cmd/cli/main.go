package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletcore-cli",
		Short: "WalletCore CLI tool",
		Long:  `A command line interface for operating the WalletCore API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the WalletCore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(pendingCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(rejectCmd())
	rootCmd.AddCommand(rateCmd())
	rootCmd.AddCommand(dashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show wallet balances for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/wallets/" + url.PathEscape(args[0]) + "/balance"
			if currency != "" {
				path += "?currency=" + url.QueryEscape(currency)
			}
			return getJSON(path)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "Limit to one currency")
	return cmd
}

func pendingCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List transfers awaiting manual review",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/approvals/"
			if user != "" {
				path += "?user=" + url.QueryEscape(user)
			}
			return getJSON(path)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Filter by user ID")
	return cmd
}

func approveCmd() *cobra.Command {
	var actor, notes string

	cmd := &cobra.Command{
		Use:   "approve <transfer-id>",
		Short: "Approve a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/approvals/"+url.PathEscape(args[0])+"/approve", map[string]string{
				"actor": actor,
				"notes": notes,
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Reviewer identity (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	cmd.MarkFlagRequired("actor")
	return cmd
}

func rejectCmd() *cobra.Command {
	var actor, reason string

	cmd := &cobra.Command{
		Use:   "reject <transfer-id>",
		Short: "Reject a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/approvals/"+url.PathEscape(args[0])+"/reject", map[string]string{
				"actor":  actor,
				"reason": reason,
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Reviewer identity (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (required)")
	cmd.MarkFlagRequired("actor")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func rateCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Show the conversion rate for a currency pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/exchange/rate?from=" + url.QueryEscape(from) + "&to=" + url.QueryEscape(to))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source currency (required)")
	cmd.Flags().StringVar(&to, "to", "", "Target currency (required)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <user-id>",
		Short: "Show a user's wallet dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/wallets/" + url.PathEscape(args[0]) + "/dashboard")
		},
	}
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postJSON(path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(truncate(string(raw), 2000))
	} else {
		printJSON(parsed)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
