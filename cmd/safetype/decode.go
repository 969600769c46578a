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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/cobra"
)

var decodeFormat string

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Read a payload and print its value",
	Long: `Read an envelope payload from FILE, resolve the type it names through the
allowlist and decode its value into that type. Payloads naming types
outside the allowlist are rejected before any value is decoded.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeFormat, "format", "", "Payload format: json or yaml (default: from the file extension)")
	rootCmd.AddCommand(decodeCmd)
}

type decodeResult struct {
	Type   string `json:"type" yaml:"type"`
	NS     string `json:"ns" yaml:"ns"`
	GoType string `json:"goType" yaml:"goType"`
	Value  any    `json:"value" yaml:"value"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	f, err := payloadFormat(decodeFormat, args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	codec, err := newCodec(services(), f)
	if err != nil {
		return err
	}
	v, h, err := codec.UnmarshalHeader(data)
	if err != nil {
		return err
	}
	r := decodeResult{Type: h.Type, NS: h.NS, GoType: reflect.TypeOf(v).String(), Value: v}

	return render(cmd.OutOrStdout(), r, func(w io.Writer) error {
		raw, err := json.Marshal(v)
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", v))
		}
		t := newTable(w, "FIELD", "VALUE")
		t.row("type", r.Type)
		t.row("ns", r.NS)
		t.row("go type", r.GoType)
		t.row("value", string(raw))
		return t.flush()
	})
}
