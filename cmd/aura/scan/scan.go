// Package scancmder provides the scan command, which runs the memory scanner
// in the foreground.
package scancmder

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
)

type scanCommander struct {
	userID          string
	storageDriver   string
	sqlitePath      string
	postgresDSN     string
	provider        string
	model           string
	onOracleFailure string
}

var scanFlags = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagOracleProvider,
	config.FlagOracleModel,
	config.FlagOnOracleFailure,
}

const scanLongDesc string = `Run a memory scan now.

Scans one user (--user) or every active user, one after another, with the
same rules as the background scanner: the user's scan settings decide which
documents are due, and locked memories are never touched.

Examples:
  aura scan
  aura scan --user 6f1c...`

const scanShortDesc string = "Run a memory scan now"

func NewScanCmd() *cobra.Command {
	cmder := &scanCommander{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: scanShortDesc,
		Long:  scanLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := stack.Resolve(cmd, scanFlags...)
			if err != nil {
				return err
			}
			s, err := stack.Open(cmd.Context(), resolved.Config, resolved.Dir, stack.Logger(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			return cmder.run(cmd.Context(), s)
		},
	}

	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "Scan only this user id")
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagOnOracleFailure, &cmder.onOracleFailure)

	return cmd
}

func (c *scanCommander) run(ctx context.Context, s *stack.Stack) error {
	var userIDs []string
	if c.userID != "" {
		userIDs = []string{c.userID}
	} else {
		users, err := s.Store.ActiveUsers(ctx)
		if err != nil {
			return fmt.Errorf("listing active users: %w", err)
		}
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
	}

	if len(userIDs) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No active users."))
		return nil
	}

	fmt.Println()
	var (
		rows [][]string
		errs []error
	)
	for _, id := range userIDs {
		var report *scanner.Report
		err := cliui.Step(os.Stdout, "Scanning "+id, func() error {
			var err error
			report, err = s.Scanner.ScanUser(ctx, id)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		rows = append(rows, reportRow(report))
	}

	if len(rows) > 0 {
		fmt.Println()
		fmt.Println(cliui.Table([]string{"User", "Documents", "Oracle failures", "Changes", "Note"}, rows))
	}
	fmt.Println()

	return errors.Join(errs...)
}

func reportRow(r *scanner.Report) []string {
	var changes []string
	for _, outcome := range slices.Sorted(maps.Keys(r.Outcomes)) {
		changes = append(changes, fmt.Sprintf("%s=%d", outcome, r.Outcomes[outcome]))
	}

	return []string{
		r.UserID,
		strconv.Itoa(r.Documents),
		strconv.Itoa(r.OracleFailures),
		strings.Join(changes, " "),
		r.Skip,
	}
}
