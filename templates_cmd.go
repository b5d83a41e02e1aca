package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"promptist/apps"
	"promptist/launcher"
	"promptist/pasteboard"
	"promptist/prompt"
	"promptist/resolve"
	"promptist/shortcut"
	"promptist/tracker"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// findTemplate resolves ref as a full id, a unique id prefix or a title
// (case-insensitive).
func findTemplate(store *prompt.Manager, ref string) (prompt.Template, error) {
	if t, err := store.Get(ref); err == nil {
		return t, nil
	}
	var byPrefix, byTitle []prompt.Template
	for _, t := range store.List() {
		if strings.HasPrefix(t.ID, ref) {
			byPrefix = append(byPrefix, t)
		}
		if strings.EqualFold(t.Title, ref) {
			byTitle = append(byTitle, t)
		}
	}
	for _, matches := range [][]prompt.Template{byPrefix, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return prompt.Template{}, errors.WithHint(
				errors.Wrapf(prompt.ErrInvalid, "%q matches %d templates", ref, len(matches)),
				"use a longer id prefix")
		}
	}
	return prompt.Template{}, errors.Wrapf(prompt.ErrNotFound, "%q", ref)
}

func appNames(targets []apps.Target) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.DisplayName()
	}
	return strings.Join(names, ", ")
}

func printTemplates(w io.Writer, ts []prompt.Template) error {
	data := pterm.TableData{{"ID", "Title", "Tags", "Apps", "Uses", "Shortcut"}}
	for _, t := range ts {
		sc := ""
		if t.Shortcut != nil {
			sc = t.Shortcut.Combo.String()
		}
		data = append(data, []string{
			shortID(t.ID), t.Title, strings.Join(t.Tags, ", "), appNames(t.LinkedApps),
			strconv.Itoa(t.UsageCount), sc,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func (c *cli) listCmd() *cobra.Command {
	var (
		app    string
		tag    string
		query  string
		recent int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		Example: `  promptist list
  promptist list --app xcode --query review
  promptist list --recent 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			var ts []prompt.Template
			if recent > 0 {
				ts = store.Recent(recent)
			} else {
				f := prompt.Filter{Query: query, Tag: tag}
				if app != "" {
					target := apps.ParseTarget(app)
					fm := apps.Frontmost{Tracked: target.App, BundleID: target.BundleID, Name: target.Name}
					if target.Kind == apps.KindTracked {
						fm.Name = target.DisplayName()
					}
					f.App = &fm
				}
				ts = store.Filter(f)
			}
			w := cmd.OutOrStdout()
			return c.render(w, ts, func() error { return printTemplates(w, ts) })
		},
	}
	cmd.Flags().StringVar(&app, "app", "", "only templates linked to this app (name or bundle id)")
	cmd.Flags().StringVar(&tag, "tag", "", "only templates with this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "substring search over title, content and tags")
	cmd.Flags().IntVar(&recent, "recent", 0, "show the N most recently used templates")
	return cmd
}

// templateFlags are shared by add and edit.
type templateFlags struct {
	title       string
	content     string
	file        string
	tags        []string
	apps        []string
	collection  string
	shortcut    string
	shortcutApp string
}

func (f *templateFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "template title")
	fs.StringVar(&f.content, "content", "", "template text")
	fs.StringVar(&f.file, "file", "", "read template text from a file (- for stdin)")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
	fs.StringSliceVar(&f.apps, "app", nil, "linked app: tracked name, bundle id or app name (repeatable)")
	fs.StringVar(&f.collection, "collection", "", "collection / category id")
	fs.StringVar(&f.shortcut, "shortcut", "", `key combo, e.g. "cmd+shift+r" ("" to clear)`)
	fs.StringVar(&f.shortcutApp, "shortcut-app", "", "limit the shortcut to one app")
}

// apply copies the flags that were set onto t.
func (f *templateFlags) apply(cmd *cobra.Command, t *prompt.Template) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		t.Title = f.title
	}
	if changed("content") {
		t.Content = f.content
	}
	if changed("file") {
		var (
			data []byte
			err  error
		)
		if f.file == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(f.file)
		}
		if err != nil {
			return errors.Wrap(err, "read template text")
		}
		t.Content = string(data)
	}
	if changed("tag") {
		t.Tags = f.tags
	}
	if changed("app") {
		t.LinkedApps = t.LinkedApps[:0]
		for _, a := range f.apps {
			t.LinkedApps = append(t.LinkedApps, apps.ParseTarget(a))
		}
	}
	if changed("collection") {
		t.CollectionID = nil
		if f.collection != "" {
			t.CollectionID = &f.collection
		}
	}
	if changed("shortcut") || changed("shortcut-app") {
		combo := f.shortcut
		if !changed("shortcut") {
			if t.Shortcut == nil {
				return errors.Wrap(shortcut.ErrInvalid, "--shortcut-app needs --shortcut")
			}
			combo = t.Shortcut.Combo.String()
		}
		t.Shortcut = nil
		if combo != "" {
			parsed, err := shortcut.Parse(combo)
			if err != nil {
				return err
			}
			b := shortcut.Binding{Combo: parsed}
			if f.shortcutApp != "" {
				b.Scope = shortcut.InApp(apps.ParseTarget(f.shortcutApp))
			}
			t.Shortcut = &b
		}
	}
	return nil
}

func (c *cli) addCmd() *cobra.Command {
	var f templateFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a template",
		Example: `  promptist add --title "Review" --content "Review this: {{selection}}" --app xcode
  pbpaste | promptist add --title "From clipboard" --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			var t prompt.Template
			if err := f.apply(cmd, &t); err != nil {
				return err
			}
			created, err := store.Create(t)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return c.render(w, created, func() error {
				pterm.Success.WithWriter(w).Printfln("Added %q (%s)", created.Title, shortID(created.ID))
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var f templateFlags
	cmd := &cobra.Command{
		Use:   "edit <id|title>",
		Short: "Change fields of a template",
		Example: `  promptist edit 3f2a --tag coding --tag review
  promptist edit "Review" --shortcut cmd+shift+r --shortcut-app xcode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			t, err := findTemplate(store, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, &t); err != nil {
				return err
			}
			updated, err := store.Update(t)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return c.render(w, updated, func() error {
				pterm.Success.WithWriter(w).Printfln("Updated %q", updated.Title)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|title>...",
		Aliases: []string{"delete"},
		Short:   "Delete templates",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			for _, ref := range args {
				t, err := findTemplate(store, ref)
				if err != nil {
					return err
				}
				if err := store.Delete(t.ID); err != nil {
					return err
				}
				pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Deleted %q", t.Title)
			}
			return nil
		},
	}
}

func (c *cli) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id|title>...",
		Short: "Move templates to the top in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			ids := make([]string, len(args))
			for i, ref := range args {
				t, err := findTemplate(store, ref)
				if err != nil {
					return err
				}
				ids[i] = t.ID
			}
			if err := store.Reorder(ids); err != nil {
				return err
			}
			ts := store.List()
			w := cmd.OutOrStdout()
			return c.render(w, ts, func() error { return printTemplates(w, ts) })
		},
	}
}

// parseInputs reads "Question=Answer" pairs.
func parseInputs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		q, a, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(q) == "" {
			return nil, errors.Newf("input %q is not Question=Answer", p)
		}
		out[strings.TrimSpace(q)] = a
	}
	return out, nil
}

func (c *cli) resolveCmd() *cobra.Command {
	var (
		inputs []string
		copyIt bool
		ask    bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <id|title>",
		Short: "Print a template with its placeholders filled in",
		Example: `  promptist resolve "Email reply" -i "Tone=friendly"
  promptist resolve 3f2a --ask --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			t, err := findTemplate(store, args[0])
			if err != nil {
				return err
			}
			answers, err := parseInputs(inputs)
			if err != nil {
				return err
			}
			if ask {
				for _, q := range resolve.Questions(t.Content) {
					if _, ok := answers[q]; ok {
						continue
					}
					a, err := pterm.DefaultInteractiveTextInput.Show(q)
					if err != nil {
						return err
					}
					answers[q] = a
				}
			}

			cfg := c.cfg.Get()
			l := launcher.New(store, tracker.New(trackerOptions(cfg)), pasteboard.Default(),
				launcher.Config{Formats: cfg.Launcher.Formats})

			w := cmd.OutOrStdout()
			if !copyIt {
				text, err := l.Preview(t.ID, answers)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, text)
				return err
			}
			res, err := l.Run(cmd.Context(), t.ID, answers)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, res.Text); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Println("Copied to clipboard")
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, `answer for {{input:Question}} as "Question=Answer" (repeatable)`)
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy the result and count it as a use")
	cmd.Flags().BoolVar(&ask, "ask", false, "prompt for unanswered inputs")
	return cmd
}
