// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the aura version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "aura %s\ncommit:   %s\nbuilt:    %s\ngo:       %s\n",
		utils.Version, utils.Sha, utils.Buildtime, runtime.Version())
	return err
}
