package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nodestore"
	"github.com/hupe1980/nodestore/dom"
)

var (
	parseDrop   []string
	parseRender bool
)

func init() {
	cmd := newParseCmd()
	cmd.Flags().StringSliceVar(&parseDrop, "drop", nil, "Detach every element with this tag (repeatable)")
	cmd.Flags().BoolVar(&parseRender, "render", false, "Print the document after collection")
	rootCmd.AddCommand(cmd)
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an HTML file into the arena and collect dropped elements",
		Long: `The parse command loads an HTML document into an arena-backed tree,
detaches every element whose tag is given with --drop, and collects the
detached subtrees.

Example:
  nodestore parse index.html --drop script --drop style
  nodestore parse index.html --drop nav --render`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args)
		},
	}
	return cmd
}

type parseResult struct {
	File     string     `json:"file"`
	Nodes    int        `json:"nodes"`
	Detached int        `json:"detached"`
	Collect  reportJSON `json:"collect"`
}

func runParse(ctx context.Context, args []string) error {
	path := args[0]
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	printVerbose("Parsing %s\n", path)
	doc, err := dom.ParseHTML(f,
		nodestore.WithLogger(newLogger()),
		nodestore.WithArenaName("dom"),
	)
	if err != nil {
		return err
	}

	res := parseResult{File: path, Nodes: doc.Len()}
	for _, tag := range parseDrop {
		for _, id := range doc.ElementsByTag(doc.Root(), tag) {
			if !doc.IsAttached(id) {
				continue // inside an element dropped earlier
			}
			parent, _ := doc.Parent(id)
			if err := doc.RemoveChild(parent, id); err != nil {
				return err
			}
			res.Detached++
			printVerbose("Detached <%s> %s\n", tag, id)
		}
	}

	report, err := doc.Collect(ctx)
	if err != nil {
		return err
	}
	res.Collect = toReportJSON(report)

	if jsonOut {
		return printJSON(res)
	}

	printInfo("%s: %d nodes, %d detached\n", res.File, res.Nodes, res.Detached)
	printInfo("%s\n", report)
	if parseRender && !quiet {
		if err := doc.RenderHTML(os.Stdout, doc.Root()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
