// Package memoriescmder provides the memories command for inspecting and
// editing a user's memories from the terminal.
package memoriescmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

const memoriesLongDesc string = `Inspect and edit the memories aura keeps about a user.

Memories are durable facts extracted from the user's writing by the
background scanner or added by hand. Locking a memory protects it from the
scanner; users can still edit and delete locked memories.

Examples:
  aura memories list --user 6f1c...
  aura memories add --user 6f1c... "Prefers short sentences"
  aura memories lock --user 6f1c... <id>`

const memoriesShortDesc string = "Manage a user's memories"

var storageFlags = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
}

type memoriesCommander struct {
	userID        string
	storageDriver string
	sqlitePath    string
	postgresDSN   string
}

func NewMemoriesCmd() *cobra.Command {
	cmder := &memoriesCommander{}

	cmd := &cobra.Command{
		Use:     "memories",
		Aliases: []string{"memory", "mem"},
		Short:   memoriesShortDesc,
		Long:    memoriesLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.userID, "user", "u", "", "User id whose memories to manage (required)")
	_ = cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(cmder.newListCmd())
	cmd.AddCommand(cmder.newAddCmd())
	cmd.AddCommand(cmder.newLockCmd(true))
	cmd.AddCommand(cmder.newLockCmd(false))
	cmd.AddCommand(cmder.newDeleteCmd())

	return cmd
}

// addStorageFlags registers the storage flags on a leaf command.
func (c *memoriesCommander) addStorageFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &c.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &c.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &c.postgresDSN)
}

// withStack opens the stack for cmd and runs fn with it.
func (c *memoriesCommander) withStack(cmd *cobra.Command, fn func(ctx context.Context, s *stack.Stack) error) error {
	if c.userID == "" {
		return errors.New("--user is required")
	}

	resolved, err := stack.Resolve(cmd, storageFlags...)
	if err != nil {
		return err
	}

	s, err := stack.Open(cmd.Context(), resolved.Config, resolved.Dir, stack.Logger(cmd))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer s.Close()

	return fn(cmd.Context(), s)
}
