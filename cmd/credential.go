package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/textgen"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the text generation API key",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Save an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.creds.Save(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("save API key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", textgen.Mask(args[0]))
		return nil
	},
}

var credentialClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.creds.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved API key removed.")
		return nil
	},
}

var credentialShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which API key is in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		key, err := d.creds.APIKey(ctx)
		if errors.Is(err, textgen.ErrMissingCredential) {
			fmt.Fprintln(out, "No API key configured.")
			return nil
		}
		if err != nil {
			return err
		}

		source := "config"
		if stored, _ := d.creds.Stored(ctx); stored {
			source = "saved"
		}
		fmt.Fprintf(out, "%s (%s, provider %s)\n", textgen.Mask(key), source, d.cfg.LLM.Provider)
		return nil
	},
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialClearCmd)
	credentialCmd.AddCommand(credentialShowCmd)
}
