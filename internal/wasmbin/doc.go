// Package wasmbin holds the byte-level WebAssembly helpers the sandbox needs
// beyond what the runtime exposes: LEB128 encoding, an import-section scanner
// that reports every import kind, the synthesized host memory module, and a
// small core module builder used to produce guest binaries in-process.
package wasmbin
