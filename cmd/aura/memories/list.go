package memoriescmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/memory"
)

const listLongDesc string = `List a user's memories, most certain and most recent first.

Examples:
  aura memories list --user 6f1c...`

func (c *memoriesCommander) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's memories",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStack(cmd, c.runList)
		},
	}
	c.addStorageFlags(cmd)
	return cmd
}

func (c *memoriesCommander) runList(ctx context.Context, s *stack.Stack) error {
	facts, err := s.Memory.List(ctx, c.userID)
	if err != nil {
		return err
	}

	if len(facts) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No memories yet."))
		return nil
	}

	memory.SortForContext(facts)
	fmt.Println()
	fmt.Println(cliui.Table(
		[]string{"", "Key", "Memory", "Category", "Confidence", "By", "ID"},
		factRows(facts),
	))
	fmt.Println()
	return nil
}

func factRows(facts []*journal.Fact) [][]string {
	rows := make([][]string, 0, len(facts))
	for _, f := range facts {
		lock := ""
		if f.Locked {
			lock = cliui.LockedMark
		}
		rows = append(rows, []string{
			lock,
			f.Key,
			f.Value.Emoji + " " + f.Value.Content,
			f.Category,
			string(f.Confidence),
			string(f.UpdatedBy),
			f.ID,
		})
	}
	return rows
}
