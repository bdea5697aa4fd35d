package main

import (
	"fmt"
	"io"
	"os"

	sections "github.com/goliatone/go-sections"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(opts *globalOptions) *cobra.Command {
	var markdown, stats bool
	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Normalize rich text input into a stored document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			limits, err := opts.limits()
			if err != nil {
				return err
			}
			input := string(raw)
			if markdown {
				input = sections.MarkdownToRichText(raw)
			}
			prepared, err := sections.PrepareRichText(input, "input", limits)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, prepared.Normalized)
			if stats {
				fmt.Fprintf(cmd.ErrOrStderr(), "bytes=%d characters=%d\n", prepared.Bytes, prepared.Characters)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "treat the input as Markdown")
	cmd.Flags().BoolVar(&stats, "stats", false, "print byte and character counts to stderr")
	return cmd
}

func newExtractCmd(_ *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Print the plain text of a stored rich text value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sections.ExtractPlainText(string(raw)))
			return nil
		},
	}
}

// readInput reads the file named by args[0], or stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
