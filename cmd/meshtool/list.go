package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/menu"
)

func newListCmd() *cobra.Command {
	var pattern string
	var limit int

	cmd := &cobra.Command{
		Use:     "list <folder>",
		Aliases: []string{"ls"},
		Short:   "List the mesh files a folder would show as previews",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := assets.NewRoot(args[0])
			listing, err := root.List(".")
			if err != nil {
				return err
			}
			matches, err := menu.Match(listing, pattern)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, f := range matches {
				if limit > 0 && i >= limit {
					break
				}
				fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Path)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\n(%d of %d files matched %q)\n", len(matches), len(listing), patternOrDefault(pattern))
			return nil
		},
	}
	cmd.Flags().StringVarP(&pattern, "pattern", "p", menu.DefaultPattern, "Glob matched against file names")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit output to N files (0 = all)")
	return cmd
}

func patternOrDefault(p string) string {
	if p == "" {
		return menu.DefaultPattern
	}
	return p
}
