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

func (c *memoriesCommander) newAddCmd() *cobra.Command {
	var in memory.CreateInput
	var confidence string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a memory by hand",
		Long: `Add a memory by hand. Its key is generated from the content; a clash
with an existing key gets a random suffix instead of overwriting.

Examples:
  aura memories add --user 6f1c... "Prefers short sentences" --category Style`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Content = args[0]
			in.Confidence = journal.Confidence(confidence)
			return c.withStack(cmd, func(ctx context.Context, s *stack.Stack) error {
				f, err := s.Memory.Create(ctx, c.userID, in)
				if err != nil {
					return err
				}
				fmt.Printf("\n  %s Added %s %s\n\n",
					cliui.SuccessMark,
					cliui.KeyStyle.Render(f.Key),
					cliui.DimStyle.Render(f.ID),
				)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Category, "category", memory.UserDefaultCategory, "Memory category")
	cmd.Flags().StringVar(&confidence, "confidence", string(memory.UserDefaultConfidence), "Confidence (low, medium, high)")
	cmd.Flags().StringVar(&in.Emoji, "emoji", memory.DefaultEmoji, "Emoji shown next to the memory")
	c.addStorageFlags(cmd)

	return cmd
}

func (c *memoriesCommander) newLockCmd(lock bool) *cobra.Command {
	use, short, verb := "lock <id>", "Protect a memory from the scanner", "Locked"
	if !lock {
		use, short, verb = "unlock <id>", "Let the scanner update a memory again", "Unlocked"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStack(cmd, func(ctx context.Context, s *stack.Stack) error {
				f, err := s.Memory.Update(ctx, c.userID, args[0], memory.UpdateInput{Locked: &lock})
				if err != nil {
					return err
				}
				fmt.Printf("\n  %s %s %s\n\n", cliui.SuccessMark, verb, cliui.KeyStyle.Render(f.Key))
				return nil
			})
		},
	}
	c.addStorageFlags(cmd)

	return cmd
}

func (c *memoriesCommander) newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a memory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStack(cmd, func(ctx context.Context, s *stack.Stack) error {
				if err := s.Memory.Delete(ctx, c.userID, args[0]); err != nil {
					return err
				}
				fmt.Printf("\n  %s Deleted %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(args[0]))
				return nil
			})
		},
	}
	c.addStorageFlags(cmd)

	return cmd
}
