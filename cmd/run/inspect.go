package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/internal/wasmbin"
)

func newInspectCmd(a *app) *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a guest's imports and exports and whether it would link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bin, err := readModule(module)
			if err != nil {
				return err
			}
			ins, err := a.engine.Inspect(cmd.Context(), bin)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Module: %s (%d bytes)\n", module, ins.Size)
			fmt.Fprintf(out, "Start function: %v\n", ins.HasStart)

			fmt.Fprintf(out, "\nImports:\n")
			if len(ins.Imports) == 0 {
				fmt.Fprintf(out, "  (none)\n")
			}
			for _, imp := range ins.Imports {
				fmt.Fprintf(out, "  %s.%s %s%s\n", imp.Module, imp.Name, imp.Kind, formatLimits(imp))
			}

			fmt.Fprintf(out, "\nExports:\n")
			if len(ins.Exports) == 0 {
				fmt.Fprintf(out, "  (none)\n")
			}
			for _, exp := range ins.Exports {
				fmt.Fprintf(out, "  %s%s\n", exp.Name, abi.FormatSignature(exp.Params, exp.Results))
			}

			if ins.Resolve != nil {
				fmt.Fprintf(out, "\nImports rejected: %v\n", ins.Resolve)
			} else {
				fmt.Fprintf(out, "\nImports accepted\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "guest module (.wasm)")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func formatLimits(imp wasmbin.Import) string {
	if imp.Kind != wasmbin.ExternMemory && imp.Kind != wasmbin.ExternTable {
		return ""
	}
	l := imp.Limits
	s := fmt.Sprintf(" {min %d", l.Min)
	if l.HasMax {
		s += fmt.Sprintf(", max %d", l.Max)
	}
	if l.Shared {
		s += ", shared"
	}
	return s + "}"
}
