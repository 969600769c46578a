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
	"log/slog"

	"github.com/samber/do"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/builder"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/knowntypes"
	"dirpx.dev/safetype/model"
)

// newContainer registers the services of one invocation. Nothing is built
// until a command invokes it.
func newContainer(cfgPath string, verbose bool, stderr io.Writer) *do.Injector {
	i := do.New()

	do.Provide(i, func(*do.Injector) (*slog.Logger, error) {
		if !verbose {
			return slog.New(slog.DiscardHandler), nil
		}
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})), nil
	})

	do.Provide(i, func(*do.Injector) (apis.Config, error) {
		if cfgPath == "" {
			return config.DefaultConfig(), nil
		}
		return config.Load(cfgPath)
	})

	do.Provide(i, func(i *do.Injector) (apis.Builder, error) {
		return builder.New(builder.WithLogger(do.MustInvoke[*slog.Logger](i))), nil
	})

	do.Provide(i, func(i *do.Injector) (apis.Registry, error) {
		cfg, err := do.Invoke[apis.Config](i)
		if err != nil {
			return nil, err
		}
		return do.MustInvoke[apis.Builder](i).BuildRegistry(cfg, model.Module()), nil
	})

	do.Provide(i, func(i *do.Injector) (apis.TypeResolver, error) {
		cfg, err := do.Invoke[apis.Config](i)
		if err != nil {
			return nil, err
		}
		reg, err := do.Invoke[apis.Registry](i)
		if err != nil {
			return nil, err
		}
		return do.MustInvoke[apis.Builder](i).BuildResolver(cfg, reg), nil
	})

	do.Provide(i, func(*do.Injector) (*knowntypes.Registry, error) {
		return knowntypes.New(), nil
	})

	return i
}
