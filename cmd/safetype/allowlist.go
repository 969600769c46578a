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
	"io"
	"strconv"
	"strings"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"dirpx.dev/safetype/apis"
)

var allowlistFilter string

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "List allowlisted types and generic definitions",
	Long: `List every entry of the allowlist built from the trusted model package:
concrete types, generic definitions of the model (with the number of
instantiations the program declares) and built-in shapes.`,
	Args: cobra.NoArgs,
	RunE: runAllowlist,
}

func init() {
	allowlistCmd.Flags().StringVarP(&allowlistFilter, "filter", "f", "", "Only list names containing this substring")
	rootCmd.AddCommand(allowlistCmd)
}

type allowlistRow struct {
	Name      string `json:"name" yaml:"name"`
	Kind      string `json:"kind" yaml:"kind"`
	Arity     int    `json:"arity,omitempty" yaml:"arity,omitempty"`
	Instances int    `json:"instances,omitempty" yaml:"instances,omitempty"`
	GoType    string `json:"goType,omitempty" yaml:"goType,omitempty"`
}

// instanceCounter is implemented by generic definitions of the trusted module.
type instanceCounter interface{ Instances() int }

func allowlistRows(reg apis.Registry, filter string) []allowlistRow {
	entries := reg.Entries()
	rows := make([]allowlistRow, 0, len(entries))
	for _, e := range entries {
		if filter != "" && !strings.Contains(e.Name, filter) {
			continue
		}
		r := allowlistRow{Name: e.Name}
		switch {
		case e.Type != nil:
			r.Kind = "type"
			r.GoType = e.Type.String()
		default:
			r.Kind = "shape"
			r.Arity = e.Generic.Arity()
			if c, ok := e.Generic.(instanceCounter); ok {
				r.Kind = "generic"
				r.Instances = c.Instances()
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func runAllowlist(cmd *cobra.Command, _ []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	reg, err := do.Invoke[apis.Registry](services())
	if err != nil {
		return err
	}
	rows := allowlistRows(reg, allowlistFilter)

	return render(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		t := newTable(w, "NAME", "KIND", "ARITY", "INSTANCES", "GO TYPE")
		for _, r := range rows {
			arity, inst := "", ""
			if r.Kind != "type" {
				arity = strconv.Itoa(r.Arity)
			}
			if r.Kind == "generic" {
				inst = strconv.Itoa(r.Instances)
			}
			t.row(r.Name, r.Kind, arity, inst, r.GoType)
		}
		return t.flush()
	})
}
