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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"dirpx.dev/safetype/apis"
)

const (
	historyFile = ".safetype_history"
	promptMain  = "safetype> "
	replHelp    = `Enter a type name to resolve it. Commands:
  :ns [NS]        show or set the namespace of resolved names
  :list [FILTER]  list allowlisted names
  :help           show this help
  :quit           exit`
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive resolution shell",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// replState is the session state of the shell.
type replState struct {
	i  *do.Injector
	ns string
}

func newReplState(i *do.Injector) (*replState, error) {
	cfg, err := do.Invoke[apis.Config](i)
	if err != nil {
		return nil, err
	}
	return &replState{i: i, ns: cfg.NamespacePrefix + "cli"}, nil
}

// replEval runs one line of input and reports whether the session ends.
func replEval(w io.Writer, st *replState, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ":") {
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(cmd) {
		case ":quit", ":q":
			return true
		case ":help":
			fmt.Fprintln(w, replHelp)
		case ":ns":
			if arg != "" {
				st.ns = arg
			}
			fmt.Fprintln(w, st.ns)
		case ":list":
			reg, err := do.Invoke[apis.Registry](st.i)
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				return false
			}
			for _, r := range allowlistRows(reg, arg) {
				fmt.Fprintf(w, "%-8s %s\n", r.Kind, r.Name)
			}
		default:
			fmt.Fprintln(w, "unknown command. Type :help for help.")
		}
		return false
	}

	r, err := resolveName(st.i, line, st.ns)
	if err != nil {
		fmt.Fprintln(w, "error:", describeError(err))
		return false
	}
	fmt.Fprintf(w, "%s\t%s\n", r.GoType, r.Canonical)
	return false
}

// describeError prefixes resolution failures with their kind.
func describeError(err error) string {
	var re *apis.ResolveError
	if errors.As(err, &re) {
		return re.Kind.String() + ": " + err.Error()
	}
	return err.Error()
}

// historyPath returns the history file in the home directory. Without a
// home directory the session keeps no history.
func historyPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, historyFile), true
}

func runRepl(cmd *cobra.Command, _ []string) error {
	st, err := newReplState(services())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "safetype repl. Type :help for help, :quit to exit.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath, ok := historyPath(); ok {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if err != nil {
			// io.EOF on Ctrl-D, liner.ErrPromptAborted on Ctrl-C.
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if replEval(out, st, line) {
			return nil
		}
	}
}
