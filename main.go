package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faq_matcher/internal/config"
)

type rootOptions struct {
	configFile    string
	knowledgePath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "faq_matcher",
		Short: "Rule-based FAQ chatbot for BrandSetu Digital",
		Long: `faq_matcher answers website visitors from a static FAQ knowledge base
using keyword scoring, records conversations and analytics, and exposes
the chat over HTTP. Running it without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (default ./configs/config.yaml)")
	root.PersistentFlags().StringVarP(&opts.knowledgePath, "knowledge", "k", "", "knowledge file, overrides knowledge.path")

	root.AddCommand(newServeCmd(opts), newAskCmd(opts), newCheckCmd(opts))
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFromFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.knowledgePath != "" {
		cfg.Knowledge.Path = o.knowledgePath
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
