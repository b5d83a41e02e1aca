package main

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"promptist/config"
	"promptist/home"
	"promptist/logger"
	"promptist/prompt"
)

// cli carries the persistent flags and what PersistentPreRunE builds from
// them.
type cli struct {
	cfgFile  string
	homeDir  string
	output   string
	jsonLogs bool
	logLevel string

	home *home.Dir
	cfg  *config.Manager
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "promptist",
		Short: "Reusable AI prompt templates for whatever app you are in",
		Long: `Promptist keeps a library of prompt templates, picks the ones linked to
the application you are working in, fills in {{placeholders}} and puts the
result on the clipboard.

Placeholders:
  {{selection}} {{clipboard}}   current clipboard text
  {{date}} {{time}} {{datetime}} the current instant
  {{input:Question}}             asked when the template runs`,
		Version:           gitRelease,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(
		&c.cfgFile, "config", "", "config file (default: ~/.promptist/config.yaml)",
	)
	root.PersistentFlags().StringVar(
		&c.homeDir, "home", "", "promptist home directory (default: ~/.promptist)",
	)
	root.PersistentFlags().StringVarP(
		&c.output, "output", "o", "table", "output format: table or json",
	)
	root.PersistentFlags().BoolVar(&c.jsonLogs, "json-logs", false, "log as JSON")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.serveCmd(),
		c.listCmd(),
		c.addCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.reorderCmd(),
		c.resolveCmd(),
		c.appsCmd(),
		c.categoriesCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.initCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	h, err := home.New(c.homeDir)
	if err != nil {
		return err
	}
	c.home = h

	cfgFile := c.cfgFile
	if cfgFile == "" {
		cfgFile = h.ConfigPath()
	}
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cm

	cfg := cm.Get()
	level := cfg.Log.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.Initialize(c.jsonLogs || cfg.Log.JSON, level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	switch c.output {
	case "table", "json":
	default:
		return errors.Newf("unknown output format %q", c.output)
	}
	return nil
}

func (c *cli) storePath() string {
	if p := c.cfg.Get().Store.Path; p != "" {
		return p
	}
	return c.home.TemplatesPath()
}

// openStore loads the template library, creating the home directory on
// first use.
func (c *cli) openStore() (*prompt.Manager, error) {
	if err := c.home.EnsureExists(); err != nil {
		return nil, err
	}
	return prompt.NewManager(c.storePath())
}

// render writes v as JSON when -o json is set and calls table otherwise.
func (c *cli) render(w io.Writer, v any, table func() error) error {
	if c.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table()
}
