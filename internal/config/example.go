// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteYAML writes o as a YAML config file.
func (o *Options) WriteYAML(w io.Writer) error {
	b, err := yaml.Marshal(o.File())
	if err != nil {
		return fmt.Errorf("encoding options: %w", err)
	}

	_, err = w.Write(b)

	return err //nolint:wrapcheck
}

// WriteHCL writes o as an HCL config file. A default parallelism is written
// as an expression of cpus so the file carries over to other machines.
func (o *Options) WriteHCL(w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("layers", cty.StringVal(o.Layers))
	body.SetAttributeValue("threshold", cty.NumberIntVal(int64(o.Threshold)))
	body.SetAttributeValue("simplify", cty.NumberFloatVal(o.Simplify))

	if o.Parallel == DefaultParallel() {
		body.SetAttributeRaw("parallel", defaultParallelExpr())
	} else {
		body.SetAttributeValue("parallel", cty.NumberIntVal(int64(o.Parallel)))
	}

	body.SetAttributeValue("verbose", cty.BoolVal(o.Verbose))
	body.SetAttributeValue("debug", cty.BoolVal(o.Debug))
	body.SetAttributeValue("interval", cty.StringVal(o.Interval.String()))
	body.SetAttributeValue("mode", cty.StringVal(o.Mode))
	body.SetAttributeValue("backend", cty.StringVal(o.Backend))
	body.SetAttributeValue("input", cty.StringVal(o.Input))

	if o.InputURL != "" {
		body.SetAttributeValue("input_url", cty.StringVal(o.InputURL))
	}

	body.SetAttributeValue("pattern", cty.StringVal(o.Pattern))
	body.SetAttributeValue("output", cty.StringVal(o.Output))

	_, err := w.Write(hclwrite.Format(f.Bytes()))

	return err //nolint:wrapcheck
}

// defaultParallelExpr is max(floor(cpus / 2), 1).
func defaultParallelExpr() hclwrite.Tokens {
	half := hclwrite.TokensForIdentifier("cpus")
	half = append(half, &hclwrite.Token{Type: hclsyntax.TokenSlash, Bytes: []byte("/")})
	half = append(half, hclwrite.TokensForValue(cty.NumberIntVal(2))...)

	return hclwrite.TokensForFunctionCall("max",
		hclwrite.TokensForFunctionCall("floor", half),
		hclwrite.TokensForValue(cty.NumberIntVal(1)))
}
