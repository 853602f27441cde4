package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persona-agent/internal/identity"
	"persona-agent/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <profile-url>",
	Short: "Print the generation prompt for a profile without calling the model",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrompt,
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if err := settings.ValidateSource(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	username, err := identity.ExtractUsername(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a := &app{}
	defer a.Close()
	source, err := buildSource(ctx, settings, logger, a)
	if err != nil {
		return err
	}

	activity, err := source.Fetch(ctx, username, settings.Fetch.Limit)
	if err != nil {
		return err
	}

	text, err := prompt.Build(activity, username)
	if errors.Is(err, prompt.ErrNoActivity) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s has no posts or comments\n", username)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
