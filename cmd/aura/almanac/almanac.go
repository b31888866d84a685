// Package almanaccmder provides the almanac command.
package almanaccmder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/almanac"
	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/journal"
)

type almanacCommander struct {
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	provider      string
	model         string
}

const almanacLongDesc string = `Show the almanac for a date (YYYY-MM-DD, default today).

The day is read from storage, or generated by the oracle and stored on first
request.

Examples:
  aura almanac
  aura almanac 2025-03-01`

const almanacShortDesc string = "Show the almanac for a date"

func NewAlmanacCmd() *cobra.Command {
	cmder := &almanacCommander{}

	cmd := &cobra.Command{
		Use:   "almanac [date]",
		Short: almanacShortDesc,
		Long:  almanacLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format(almanac.DateLayout)
			if len(args) == 1 {
				date = args[0]
			}

			resolved, err := stack.Resolve(cmd,
				config.FlagStorageDriver, config.FlagSQLite, config.FlagPostgres,
				config.FlagOracleProvider, config.FlagOracleModel,
			)
			if err != nil {
				return err
			}
			// The command is an explicit request, so ignore almanac.enabled.
			resolved.Config.Almanac.Enabled = true

			s, err := stack.Open(cmd.Context(), resolved.Config, resolved.Dir, stack.Logger(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			return cmder.run(cmd.Context(), s.Almanac, date)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleModel, &cmder.model)

	return cmd
}

func (c *almanacCommander) run(ctx context.Context, svc *almanac.Service, date string) error {
	day, err := svc.GetDate(ctx, date)
	if errors.Is(err, almanac.ErrUnavailable) {
		fmt.Printf("\n  %s %s\n\n", cliui.FailMark, cliui.DimStyle.Render("Almanac not available for "+date))
		return err
	}
	if err != nil {
		return err
	}

	out, err := cliui.RenderMarkdown(Markdown(day))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Markdown formats a day for terminal rendering.
func Markdown(day *journal.Almanac) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", day.Icon, day.Date)
	section := func(title string, items []string) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(items) == 0 {
			b.WriteString("_nothing_\n\n")
			return
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	section("Suitable", day.Yi)
	section("Avoid", day.Ji)
	return b.String()
}
