package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"promptist/apps"
	"promptist/category"
)

func (c *cli) appsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the applications promptist recognizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := apps.All()
			w := cmd.OutOrStdout()
			return c.render(w, all, func() error {
				data := pterm.TableData{{"App", "Name", "Bundle IDs"}}
				for _, a := range all {
					data = append(data, []string{string(a.App), a.DisplayName, strings.Join(a.BundleIDs, ", ")})
				}
				return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
			})
		},
	}
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the category tree with template counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			tree := category.WithCounts(store.List())
			w := cmd.OutOrStdout()
			return c.render(w, tree, func() error {
				root := pterm.TreeNode{Text: "categories"}
				for _, m := range tree {
					node := pterm.TreeNode{Text: fmt.Sprintf("%s (%d)", m.Name, m.Count)}
					for _, s := range m.Subcategories {
						node.Children = append(node.Children, pterm.TreeNode{
							Text: fmt.Sprintf("%s %s (%d)", s.Name, pterm.Gray(s.ID), s.Count),
						})
					}
					root.Children = append(root.Children, node)
				}
				return pterm.DefaultTree.WithRoot(root).WithWriter(w).Render()
			})
		},
	}
}
