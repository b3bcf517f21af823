// Command run executes sandboxed guests from the command line.
//
//	run exec --module mean.wasm --in ints:8,6,8,3,7,1,9
//	run exec --module echo.wasm --profile buffer --output-len 64 --in text:hello
//	run stats --fixture test_data.json
//	run inspect --module guest.wasm
//	run tui --fixture test_data.json
package main

import (
	"fmt"
	"os"

	"github.com/wippyai/wasm-sandbox/errors"
	"github.com/wippyai/wasm-sandbox/gate"
)

func main() {
	a := &app{}
	if err := execute(a, newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode uses the gate status for engine errors so scripts can tell a
// bad module from a crashed guest. Anything else exits 1.
func exitCode(err error) int {
	if _, ok := errors.As(err); !ok {
		return 1
	}
	return int(gate.StatusOf(err))
}
