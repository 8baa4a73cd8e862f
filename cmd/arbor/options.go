package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/editor"
	"github.com/arbor-lang/arbor/internal/insertmenu"
	"github.com/arbor-lang/arbor/internal/types"
)

type optionsOptions struct {
	location string
	node     string
	keys     []string
	search   string
	json     bool
}

func newOptionsCmd(root *rootOptions) *cobra.Command {
	var opts optionsOptions
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the insert menu options at a node",
		Long: "List the insert menu options at a node.\n" +
			"\n" +
			"The location's code is opened in an editor session, the node is\n" +
			"selected and the keys are pressed to open the menu. The default key is\n" +
			"r (replace) with a node and o (new line) without one.\n" +
			"\n" +
			"Example:\n" +
			"  arbor options --location function:label --node <id> --search na",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := root.load()
			if err != nil {
				return err
			}
			loc, err := parseLocation(ws, opts.location)
			if err != nil {
				return err
			}
			code, _ := ws.Programs.Code(loc.ID)
			var required *types.Type
			if t, ok := ws.Programs.RequiredReturnType(loc); ok {
				required = &t
			}
			s := editor.NewSession(ws.Env, code,
				editor.WithLogger(root.logger),
				editor.WithLocation(loc, required))

			keys := opts.keys
			if opts.node != "" {
				id, err := uuid.Parse(opts.node)
				if err != nil {
					return fmt.Errorf("--node %q: %w", opts.node, err)
				}
				s.Select(id)
				if len(keys) == 0 {
					keys = []string{"r"}
				}
			} else if len(keys) == 0 {
				keys = []string{"o"}
			}
			for _, k := range keys {
				if err := s.HandleKey(editor.ParseKeypress(k)); err != nil {
					return fmt.Errorf("key %s: %w", k, err)
				}
			}
			if err := s.SetSearch(opts.search); err != nil {
				return err
			}
			groups, err := s.Options()
			if err != nil {
				return err
			}

			printer := ast.Printer{Env: ws.Env, Root: s.Root()}
			if opts.json {
				return printOptionsJSON(cmd.OutOrStdout(), printer, groups)
			}
			printOptions(cmd.OutOrStdout(), printer, groups)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.location, "location", "l", "",
		"Location to open, as kind:name")
	cmd.Flags().StringVarP(&opts.node, "node", "n", "",
		"ID of the node to select")
	cmd.Flags().StringSliceVarP(&opts.keys, "keys", "k", nil,
		"Keys to press before listing, e.g. shift+w")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "",
		"Search text")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Print options as JSON")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func printOptions(w io.Writer, printer ast.Printer, groups []insertmenu.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "no options")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s:\n", g.Name)
		for _, o := range g.Options {
			marker := " "
			if o.Selected {
				marker = ">"
			}
			fmt.Fprintf(w, "%s %s\n", marker, printer.Print(o.Node))
		}
	}
}

type optionJSON struct {
	Group    string `json:"group"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Selected bool   `json:"selected,omitempty"`
}

func printOptionsJSON(w io.Writer, printer ast.Printer, groups []insertmenu.Group) error {
	out := make([]optionJSON, 0)
	for _, g := range groups {
		for _, o := range g.Options {
			out = append(out, optionJSON{
				Group:    g.Name,
				Label:    printer.Print(o.Node),
				Kind:     string(o.Node.Kind()),
				Selected: o.Selected,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
