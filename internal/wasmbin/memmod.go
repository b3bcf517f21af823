package wasmbin

// MemoryModule builds a module that defines one memory of exactly pages
// pages and exports it under exportName. The maximum equals the minimum so
// the memory cannot be grown by an importer.
func MemoryModule(exportName string, pages uint32) []byte {
	var wasm []byte
	wasm = append(wasm, magic...)
	wasm = append(wasm, version...)

	// Memory section
	var mem []byte
	mem = append(mem, EncodeULEB128(1)...)
	mem = append(mem, encodeLimits(Limits{Min: pages, Max: pages, HasMax: true})...)
	wasm = append(wasm, section(sectionMemory, mem)...)

	// Export section
	var exp []byte
	exp = append(exp, EncodeULEB128(1)...)
	exp = append(exp, encodeName(exportName)...)
	exp = append(exp, byte(ExternMemory))
	exp = append(exp, EncodeULEB128(0)...)
	wasm = append(wasm, section(sectionExport, exp)...)

	return wasm
}
