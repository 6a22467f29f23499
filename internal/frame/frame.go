// Package frame implements the lock-free handshake between the CPU/VIC
// step loop (the producer) and a renderer (the consumer): the producer
// publishes at most one pending Snapshot per completed frame, and the
// consumer claims it atomically, without either side ever blocking on a
// mutex.
package frame

import "sync/atomic"

// Snapshot is an immutable, fully-owned copy of everything a renderer
// needs to draw one frame: the full 64KB RAM image (so sprite/screen/color
// data stay consistent even after the producer starts mutating live RAM
// for the next frame) plus the VIC-II register file captured at the same
// instant.
type Snapshot struct {
	RAM     [0x10000]byte
	VICRegs [0x40]byte
	Raster  uint16
}

// Flag is a single-slot mailbox built on atomic.Pointer rather than a
// shared bool-plus-struct: the producer never mutates a Snapshot it has
// already published, it only ever swaps the pointer to a brand new one.
// That gives ownership transfer for free — once TryTake returns a
// Snapshot, nothing else will ever write to it — without the torn reads a
// plain atomic.Bool guarding a shared struct field would risk if the
// producer raced ahead and started overwriting that struct mid-copy.
type Flag struct {
	pending atomic.Pointer[Snapshot]
}

// Publish hands off snap to whichever consumer next calls TryTake. If a
// previous snapshot is still unclaimed, it is silently dropped — the
// producer never blocks waiting for a slow renderer.
func (f *Flag) Publish(snap *Snapshot) {
	f.pending.Store(snap)
}

// TryTake atomically claims the pending snapshot, if any. ok is false when
// no new frame has been published since the last successful TryTake.
func (f *Flag) TryTake() (snap *Snapshot, ok bool) {
	snap = f.pending.Swap(nil)
	return snap, snap != nil
}
