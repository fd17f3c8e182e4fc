// Package session holds the single active wallet session. A Slot stores at
// most one reference-counted Handle; readers acquire their own reference so a
// concurrent replacement never invalidates a command that is already running.
//
// The slot lock is held only long enough to read-and-acquire or to swap the
// stored pointer. Releasing the replaced handle, and closing its engine when
// it was the last reference, happens outside the lock.
package session
