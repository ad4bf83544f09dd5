package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Archith7/MediSaarthi/internal/config"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

var outputFormat string

// addOutputFlag registers --output on commands that print API data
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")
}

// render writes value as json or yaml, or calls text for the default format
func render(w io.Writer, value any, text func(io.Writer)) error {
	switch outputFormat {
	case "", "text":
		text(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", outputFormat)
}

// apiClient loads the active profile and builds a client for it
func apiClient() (*config.Config, *transport.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := transport.NewClient(cfg.GetBaseURL(), nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
