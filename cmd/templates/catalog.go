package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sections "github.com/goliatone/go-sections"
	"github.com/spf13/cobra"
)

var errPayloadInvalid = errors.New("payload failed validation")

func newLintCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Build the catalog and report definition errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, definition := range reg.All() {
				slots := "-"
				if len(definition.AllowedSlots) > 0 {
					slots = strings.Join(definition.AllowedSlots, ",")
				}
				fmt.Fprintf(out, "%s\t%d fields\tslots=%s\n", definition.Key, len(definition.Fields), slots)
			}
			fmt.Fprintf(out, "ok: %d templates\n", reg.Len())
			return nil
		},
	}
}

func newRulesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules <template>",
		Short: "Print the synthesized validation rules of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			set, err := sections.NewValidator(reg).Rules(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if set.Empty() {
				fmt.Fprintf(out, "%s accepts any object\n", set.TemplateKey)
				return nil
			}
			for _, rule := range set.Rules {
				fmt.Fprintf(out, "%s\t%s\n", rule.Path, rule.Describe())
			}
			return nil
		},
	}
}

func newSchemaCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <template>",
		Short: "Print the JSON Schema of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			schema, err := sections.NewValidator(reg).Schema(args[0])
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(schema)
		},
	}
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template> [payload.json|-]",
		Short: "Validate a JSON payload against a template",
		Long:  "validate reads a JSON object from a file, or stdin when the path is omitted or \"-\", and prints every issue found.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}

			err = sections.NewValidator(reg).Validate(args[0], payload)
			out := cmd.OutOrStdout()
			var invalid *sections.PayloadValidationError
			switch {
			case err == nil:
				fmt.Fprintln(out, "ok")
				return nil
			case errors.As(err, &invalid) && len(invalid.Issues) > 0:
				for _, issue := range invalid.Issues {
					fmt.Fprintf(out, "%s\t%s\t%s\n", issue.Location, issue.Code, issue.Message)
				}
				return errPayloadInvalid
			default:
				return err
			}
		},
	}
}
