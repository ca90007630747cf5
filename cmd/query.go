package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgequery/edgequery/pkg/query"
	"github.com/edgequery/edgequery/pkg/table"
)

var (
	querySQL    string
	queryName   string
	queryScript string

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func getQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one query on the edge node and print the result table",
		RunE:  runQuery,
	}

	cmd.Flags().StringVarP(&querySQL, "execute", "e", "",
		"Query text to run (overrides the configured default)")
	cmd.Flags().StringVar(&queryName, "name", "",
		"Named query from the query book to run")
	cmd.Flags().StringVar(&queryScript, "script", "",
		"Local HQL script to upload to the edge node and run")
	cmd.MarkFlagsMutuallyExclusive("execute", "name", "script")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, err := buildService()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	if timeout := requestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	host := viper.GetString("ssh.host")
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond) //nolint:mnd
	s.Suffix = statusStyle.Render(fmt.Sprintf(" running query on %s", host))
	s.Start()

	var result *table.Result
	switch {
	case queryScript != "":
		result, err = svc.RunScript(ctx, queryScript)
	case querySQL != "":
		result, err = svc.Run(ctx, querySQL)
	default:
		result, err = svc.RunNamed(ctx, queryName)
	}
	s.Stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(queryErrorLine(err)))
		return err
	}

	table.RenderTerminal(os.Stdout, result)
	return nil
}

// queryErrorLine gives a one-line account of what failed, including the
// remote error stream when the query itself failed.
func queryErrorLine(err error) string {
	var cmdErr *query.CommandError
	if errors.As(err, &cmdErr) && len(cmdErr.Stderr) > 0 {
		return fmt.Sprintf("query failed: %s", cmdErr.StderrExcerpt(512)) //nolint:mnd
	}
	return fmt.Sprintf("query failed: %v", err)
}
