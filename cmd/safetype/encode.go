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
	"os"
	"reflect"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/envelope"
	"dirpx.dev/safetype/knowntypes"
)

var (
	encodeNS     string
	encodeFormat string
	encodeOut    string
)

var encodeCmd = &cobra.Command{
	Use:   "encode NAME",
	Short: "Write a payload for the zero value of a type",
	Long: `Resolve NAME like the resolve command, then write an envelope payload
holding the zero value of the resulting type. The payload names the type
canonically, so it can be fed back to the decode command.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeNS, "ns", "", "Namespace of the name (default: <prefix>cli)")
	encodeCmd.Flags().StringVar(&encodeFormat, "format", "", "Payload format: json or yaml (default: from --out, else json)")
	encodeCmd.Flags().StringVar(&encodeOut, "out", "", "Write the payload to this file instead of stdout")
	rootCmd.AddCommand(encodeCmd)
}

// payloadFormat picks the format from an explicit flag, then the file
// extension, then JSON.
func payloadFormat(flag, path string) (envelope.Format, error) {
	switch {
	case flag != "":
		f := envelope.Format(flag)
		if f != envelope.FormatJSON && f != envelope.FormatYAML {
			return "", fmt.Errorf("%w: %q", envelope.ErrUnknownFormat, flag)
		}
		return f, nil
	case path != "":
		return envelope.FormatOf(path)
	default:
		return envelope.FormatJSON, nil
	}
}

func newCodec(i *do.Injector, f envelope.Format) (*envelope.Codec, error) {
	res, err := do.Invoke[apis.TypeResolver](i)
	if err != nil {
		return nil, err
	}
	known := do.MustInvoke[*knowntypes.Registry](i)
	return envelope.New(res, envelope.WithFallback(known), envelope.WithFormat(f)), nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	f, err := payloadFormat(encodeFormat, encodeOut)
	if err != nil {
		return err
	}
	i := services()
	r, err := resolveName(i, args[0], encodeNS)
	if err != nil {
		return err
	}
	codec, err := newCodec(i, f)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(reflect.New(r.t).Elem().Interface())
	if err != nil {
		return err
	}

	if encodeOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(encodeOut, data, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", encodeOut, r.Canonical)
	return nil
}
