package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/mesh"
	"github.com/Faultbox/meshview/internal/mesh/obj"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <folder> <mesh>",
		Short: "Load one mesh and report its attributes, groups and assets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := assets.NewRoot(args[0])
			listing, err := root.List(".")
			if err != nil {
				return err
			}
			clean, err := assets.Clean(args[1])
			if err != nil {
				return err
			}

			loader := obj.NewLoader(root, logger.Named("obj"))
			data, err := loader.LoadMesh(cmd.Context(), clean, listing.ResolverFor(clean))
			if err != nil {
				return err
			}
			printInfo(cmd, data)
			return nil
		},
	}
}

func printInfo(cmd *cobra.Command, data *mesh.Data) {
	out := cmd.OutOrStdout()
	b := data.Bounds()

	fmt.Fprintf(out, "Mesh:      %s\n", data.Name)
	fmt.Fprintf(out, "Vertices:  %d\n", data.VertexCount())
	if data.Indexed() {
		fmt.Fprintf(out, "Indices:   %d\n", len(data.Indices))
	} else {
		fmt.Fprintln(out, "Indices:   none")
	}
	fmt.Fprintf(out, "Draw:      %d\n", data.DrawCount())

	var attrs []string
	for _, spec := range mesh.Attributes {
		if len(data.Attribute(spec.Name)) > 0 {
			attrs = append(attrs, mesh.InputName(spec.Name))
		}
	}
	fmt.Fprintf(out, "Inputs:    %s\n", strings.Join(attrs, ", "))
	if data.GeneratedNormals {
		fmt.Fprintln(out, "Normals:   generated")
	}
	fmt.Fprintf(out, "Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	fmt.Fprintf(out, "Radius:    %.3f\n", b.Radius())

	if len(data.Groups) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Groups:")
		for _, g := range data.Groups {
			fmt.Fprintf(out, "  %-16s material=%-12s first=%d count=%d\n", g.Name, g.Material, g.First, g.Count)
		}
	}
	printList(cmd, "Materials", data.Materials)
	printList(cmd, "Textures", data.Textures)
	printList(cmd, "Missing", data.Missing)
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  %s\n", item)
	}
}
