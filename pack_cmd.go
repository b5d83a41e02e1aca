package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"promptist/config"
	"promptist/prompt"
)

func (c *cli) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write all templates as a JSON or YAML pack",
		Example: `  promptist export backup.yaml
  promptist export --format json > prompts.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			f := prompt.Format(format)
			if len(args) == 1 && args[0] != "-" {
				if !cmd.Flags().Changed("format") {
					f = prompt.FormatFor(args[0])
				}
				return exportFile(store, args[0], f, cmd.ErrOrStderr())
			}
			return store.Export(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(prompt.FormatJSON), "json or yaml (default from file extension)")
	return cmd
}

// exportFile writes the pack to path and reports errors from closing it.
func exportFile(store *prompt.Manager, path string, f prompt.Format, status io.Writer) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	if err := store.Export(file, f); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	pterm.Success.WithWriter(status).Printfln("Exported %d templates to %s", len(store.List()), path)
	return nil
}

func (c *cli) importCmd() *cobra.Command {
	var (
		format  string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Add templates from a JSON or YAML pack",
		Long: `Append the templates of a pack to the library. Templates whose id is
already taken get a new one; shortcuts that would clash are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			f := prompt.Format(format)
			if args[0] != "-" {
				if !cmd.Flags().Changed("format") {
					f = prompt.FormatFor(args[0])
				}
				file, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open pack")
				}
				defer file.Close()
				r = file
			}
			pack, err := prompt.ReadPack(r, f)
			if err != nil {
				return err
			}
			importFn := store.Import
			if replace {
				importFn = store.ImportReplace
			}
			added, err := importFn(pack)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return c.render(w, added, func() error {
				pterm.Success.WithWriter(w).Printfln("Imported %d templates", len(added))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(prompt.FormatJSON), "json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing templates first")
	return cmd
}

func (c *cli) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfgFile
			if path == "" {
				path = c.home.ConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.WithHint(errors.Newf("%s already exists", path), "pass --force to overwrite")
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
