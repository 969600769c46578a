/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dirpx.dev/safetype/typename"
)

var parseCmd = &cobra.Command{
	Use:   "parse NAME...",
	Short: "Parse type names into trees",
	Long: `Parse each NAME with the type-name grammar and print the resulting tree.
Nothing is resolved; names outside the allowlist parse fine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

type parseNode struct {
	Name   string      `json:"name" yaml:"name"`
	Args   []parseNode `json:"args,omitempty" yaml:"args,omitempty"`
	Layout []int       `json:"layout,omitempty" yaml:"layout,omitempty"`
}

func toParseNode(n *typename.Name) parseNode {
	out := parseNode{Name: n.Name, Layout: n.Layout}
	for _, a := range n.Args {
		out.Args = append(out.Args, toParseNode(a))
	}
	return out
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	nodes := make([]parseNode, 0, len(args))
	for _, s := range args {
		n, err := typename.Parse(s)
		if err != nil {
			return err
		}
		nodes = append(nodes, toParseNode(n))
	}

	return render(cmd.OutOrStdout(), nodes, func(w io.Writer) error {
		for _, n := range nodes {
			writeTree(w, n, 0)
		}
		return nil
	})
}

func writeTree(w io.Writer, n parseNode, depth int) {
	line := strings.Repeat("  ", depth) + n.Name
	if len(n.Layout) > 0 {
		line += fmt.Sprintf("  layout=%v", n.Layout)
	}
	//nolint:errcheck // best-effort terminal output
	fmt.Fprintln(w, line)
	for _, a := range n.Args {
		writeTree(w, a, depth+1)
	}
}
