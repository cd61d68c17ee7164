// Package main implements the tbdash CLI for viewing timeboard
// dashboards and driving server refreshes.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/timeboard/internal/dashboard"
)

var (
	// serverURL is the base URL for the timeboard server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tbdash",
	Short: "Terminal dashboard for a timeboard server",
	Long: `tbdash renders time-tracking analytics from a timeboard server:
team hours, leaderboards, overdue tasks and weekly pivot tables.

All aggregation happens locally over the server's cached snapshot.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8787", "timeboard server URL")
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statusCmd)
}

// dashCmd opens the interactive dashboard
var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

Examples:
  # Dashboard against the local server
  tbdash dash

  # Use a different server
  tbdash dash --server http://timeboard.internal:8787`,
	Args: cobra.NoArgs,
	RunE: runDash,
}

func runDash(cmd *cobra.Command, args []string) error {
	model := dashboard.NewModel(dashboard.NewClient(serverURL))
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// refreshCmd triggers a server-side snapshot refresh and waits for it
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trigger a snapshot refresh and wait for it",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	client := dashboard.NewClient(serverURL)

	fmt.Fprintln(cmd.OutOrStdout(), "Refreshing… this re-fetches the full project history.")
	snapshot, err := client.Refresh(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Refreshed snapshot %s: %d tasks, %d time entries (fetched %s)\n",
		snapshot.ID, len(snapshot.Tasks), len(snapshot.TimeEntries),
		snapshot.FetchedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// statusCmd reports whether a refresh is running
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a refresh is in progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := dashboard.NewClient(serverURL)

	inProgress, err := client.Status(context.Background())
	if err != nil {
		return err
	}
	if inProgress {
		fmt.Fprintln(cmd.OutOrStdout(), "refresh in progress")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "idle")
	}
	return nil
}
