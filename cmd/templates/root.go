package main

import (
	"strings"

	sections "github.com/goliatone/go-sections"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	catalog    string
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and exercise section template catalogs",
		Long: `templates works against a catalog file or directory of YAML, JSON or
Markdown template descriptors.

Examples:
  templates lint -t ./templates
  templates rules hero_primary
  templates schema faq
  templates validate hero_primary payload.json
  templates normalize --markdown README.md
  templates extract body.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.catalog, "templates", "t", "", "catalog file or directory (overrides the config)")
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "runtime config file")

	root.AddCommand(
		newLintCmd(opts),
		newRulesCmd(opts),
		newSchemaCmd(opts),
		newValidateCmd(opts),
		newNormalizeCmd(opts),
		newExtractCmd(opts),
	)
	return root
}

func (o *globalOptions) config() (sections.Config, error) {
	if strings.TrimSpace(o.configFile) == "" {
		return sections.DefaultConfig(), nil
	}
	return sections.LoadConfig(o.configFile)
}

func (o *globalOptions) registry() (*sections.Registry, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	path := cfg.Templates.Path
	if strings.TrimSpace(o.catalog) != "" {
		path = o.catalog
	}
	regOpts := []sections.RegistryOption{sections.WithMaxDepth(cfg.Templates.MaxDepth)}
	if cfg.Templates.UnrestrictedEmptySlots {
		regOpts = append(regOpts, sections.WithUnrestrictedEmptySlots())
	}
	return sections.LoadRegistry(path, regOpts...)
}

func (o *globalOptions) limits() (sections.RichTextLimits, error) {
	cfg, err := o.config()
	if err != nil {
		return sections.RichTextLimits{}, err
	}
	return sections.RichTextLimits{
		MaxBytes:      cfg.RichText.MaxBytes,
		MaxCharacters: cfg.RichText.MaxCharacters,
	}, nil
}
