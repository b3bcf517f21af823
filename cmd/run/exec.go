package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/engine"
)

type execOptions struct {
	module    string
	inputs    []string
	profile   string
	result    string
	entry     string
	outputLen uint32
	json      bool
	raw       bool
}

func newExecCmd(a *app) *cobra.Command {
	o := &execOptions{}
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute one guest call",
		Long: `Execute one guest call. Inputs are given in order with --in and laid
out back to back in the arena; a scalar or a buffer result is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExec(cmd, o)
		},
	}

	o.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func (o *execOptions) bind(f *pflag.FlagSet) {
	f.StringVarP(&o.module, "module", "m", "", "guest module (.wasm)")
	f.StringArrayVarP(&o.inputs, "in", "i", nil, "input: file:PATH, text:S, hex:H, ints:1,2 or floats:1.5,2 (repeatable)")
	f.StringVarP(&o.profile, "profile", "p", "scalar", "calling convention: scalar, buffer, terminated, buffer-nocap, terminated-nocap, schema, append")
	f.StringVarP(&o.result, "result", "r", "i32", "scalar result type (i32, i64, f32, f64 or WIT names like s32, u64)")
	f.StringVar(&o.entry, "entry", "", "entry function (default from config)")
	f.Uint32Var(&o.outputLen, "output-len", 0, "output region size for buffer profiles")
	f.BoolVar(&o.json, "json", false, "decode a buffer result as JSON and pretty-print it")
	f.BoolVar(&o.raw, "raw", false, "write a buffer result as raw bytes")
}

func (o *execOptions) buildProfile(defaultEntry string) (abi.Profile, error) {
	rt, err := abi.ParseValueType(o.result)
	if err != nil {
		return abi.Profile{}, err
	}
	p, err := abi.ParseProfile(o.profile, rt)
	if err != nil {
		return abi.Profile{}, err
	}
	switch {
	case o.entry != "":
		p = p.WithEntry(o.entry)
	case p.Entry == abi.DefaultEntry:
		p = p.WithEntry(defaultEntry)
	}
	return p, nil
}

func (a *app) runExec(cmd *cobra.Command, o *execOptions) error {
	bin, err := readModule(o.module)
	if err != nil {
		return err
	}
	p, err := o.buildProfile(a.cfg.Engine.Entry)
	if err != nil {
		return err
	}

	inputs := make([][]byte, 0, len(o.inputs))
	for _, arg := range o.inputs {
		in, err := parseInput(arg)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}
	// a single-input profile called without --in gets an empty input
	if len(inputs) == 0 && p.Inputs == 1 {
		inputs = append(inputs, nil)
	}

	ctx, cancel := a.callContext(cmd.Context())
	defer cancel()

	res, err := a.engine.Execute(ctx, engine.Request{
		Module:    bin,
		Inputs:    inputs,
		OutputLen: o.outputLen,
		Profile:   p,
	})
	if err != nil {
		return err
	}
	return o.print(cmd, res)
}

func (o *execOptions) print(cmd *cobra.Command, res *engine.Result) error {
	out := cmd.OutOrStdout()
	if res.Kind == engine.ResultScalar {
		fmt.Fprintf(out, "%s: %s\n", abi.TypeName(res.Scalar.Type), res.Scalar)
		return nil
	}

	switch {
	case o.json:
		var v any
		if err := res.DecodeJSON(&v); err != nil {
			return err
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		_, err := out.Write(buf.Bytes())
		return err
	case o.raw:
		_, err := out.Write(res.Buffer)
		return err
	default:
		fmt.Fprintf(out, "buffer (%d bytes): %q\n", len(res.Buffer), res.Buffer)
		return nil
	}
}
