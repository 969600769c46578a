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
	"reflect"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/envelope"
	"dirpx.dev/safetype/knowntypes"
)

var resolveNS string

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME",
	Short: "Resolve a type name to a Go type",
	Long: `Resolve NAME under the namespace given by --ns (default: the configured
prefix followed by "cli") exactly as a decoder would, then encode the
resulting type again to show its canonical name.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveNS, "ns", "", "Namespace of the name (default: <prefix>cli)")
	rootCmd.AddCommand(resolveCmd)
}

type resolveResult struct {
	Name      string `json:"name" yaml:"name"`
	NS        string `json:"ns" yaml:"ns"`
	GoType    string `json:"goType" yaml:"goType"`
	Kind      string `json:"kind" yaml:"kind"`
	Canonical string `json:"canonical" yaml:"canonical"`
	CanonNS   string `json:"canonicalNs" yaml:"canonicalNs"`

	t reflect.Type
}

// resolveName decodes (name, ns) and re-encodes the result.
func resolveName(i *do.Injector, name, ns string) (resolveResult, error) {
	cfg, err := do.Invoke[apis.Config](i)
	if err != nil {
		return resolveResult{}, err
	}
	res, err := do.Invoke[apis.TypeResolver](i)
	if err != nil {
		return resolveResult{}, err
	}
	known := do.MustInvoke[*knowntypes.Registry](i)

	if ns == "" {
		ns = cfg.NamespacePrefix + "cli"
	}
	t, err := res.ResolveName(name, ns, known)
	if err != nil {
		return resolveResult{}, err
	}
	if t == nil {
		return resolveResult{}, fmt.Errorf("%w: %q in %q", envelope.ErrDeclined, name, ns)
	}
	out := resolveResult{Name: name, NS: ns, GoType: t.String(), Kind: t.Kind().String(), t: t}
	out.Canonical, out.CanonNS, _ = res.TryResolveType(t, known)
	return out, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	r, err := resolveName(services(), args[0], resolveNS)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), r, func(w io.Writer) error {
		t := newTable(w, "FIELD", "VALUE")
		t.row("name", r.Name)
		t.row("ns", r.NS)
		t.row("go type", r.GoType)
		t.row("kind", r.Kind)
		t.row("canonical", r.Canonical)
		t.row("canonical ns", r.CanonNS)
		return t.flush()
	})
}
