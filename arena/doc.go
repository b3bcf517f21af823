// Package arena sizes and lays out the host-owned linear memory a guest
// runs against.
//
// Size turns byte counts into a page count. Plan places each input region
// back to back from offset zero and the output region after them. Arena
// wraps the memory instance with bounds-checked, copying reads and writes.
package arena
