// Package wasmsandbox runs untrusted WebAssembly core modules against a
// host-allocated, explicitly sized linear memory.
//
// A call is single shot: the module is loaded and validated, an arena is
// sized to hold the inputs plus the output region, the guest's only import
// (env.memory) is bound to that arena, the entry function is invoked with
// (offset, length) pairs, and a scalar or a byte buffer is extracted. Nothing
// survives the call.
//
// # Packages
//
//	wasmsandbox/        Root package with the Memory interface
//	├── engine/         Loader, invocation driver, result extractor, Execute
//	├── arena/          Arena sizing, region layout, bounds-checked memory
//	├── host/           Import resolution and the synthesized env module
//	├── abi/            Calling convention profiles and result values
//	├── gate/           Status-code entry points for a trust boundary
//	├── fixture/        JSON fixtures encoded as guest input
//	├── config/         Layered CLI configuration
//	├── errors/         Structured error types
//	└── cmd/run/        Command line runner
//
// # Quick Start
//
//	eng, err := engine.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := eng.Execute(ctx, engine.Request{
//	    Module:  wasmBytes,
//	    Inputs:  [][]byte{fixture.EncodeInts([]int32{8, 6, 8, 3, 7, 1, 9})},
//	    Profile: abi.Scalar(api.ValueTypeI32),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Scalar.I32()) // 6
//
// Buffer results use a second profile:
//
//	res, err := eng.Execute(ctx, engine.Request{
//	    Module:    wasmBytes,
//	    Inputs:    [][]byte{payload},
//	    OutputLen: 4096,
//	    Profile:   abi.Terminated(),
//	})
//	var out map[string]any
//	err = res.DecodeJSON(&out)
//
// # Guest ABI
//
// Guests import exactly one memory, env.memory, and export the entry
// function (exec by default). Every parameter is an i32: the offset and
// length of each input region in order, followed by the output region's
// offset and capacity for buffer profiles. Uncapped buffer profiles pass
// the output offset alone.
package wasmsandbox
