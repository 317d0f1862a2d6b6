// Package cli wires the triage workflow into a Cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/prtriage/prtriage/internal/usecase/triage"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// TriageRunner defines the dependency required to run a triage session.
type TriageRunner interface {
	Run(ctx context.Context, owner, repo, assignee string) (triage.Summary, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner          TriageRunner
	Args            Arguments
	DefaultOwner    string
	DefaultRepo     string
	DefaultAssignee string
	Version         string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prt",
		Short: "Interactive pull request triage",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(triageCommand(deps.Runner, deps.DefaultOwner, deps.DefaultRepo, deps.DefaultAssignee))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func triageCommand(runner TriageRunner, defaultOwner, defaultRepo, defaultAssignee string) *cobra.Command {
	var owner string
	var repo string
	var assignee string

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Walk through the repository's open pull requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				owner = defaultOwner
			}
			if repo == "" {
				repo = defaultRepo
			}
			if assignee == "" {
				assignee = defaultAssignee
			}
			if owner == "" || repo == "" {
				return fmt.Errorf("repository not specified; pass --owner and --repo, set them in prt.yaml, or run inside a clone with a GitHub origin remote")
			}

			_, err := runner.Run(cmd.Context(), owner, repo, assignee)
			return err
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (defaults to config or origin remote)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (defaults to config or origin remote)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only triage PRs assigned to this login (empty for all)")

	return cmd
}
