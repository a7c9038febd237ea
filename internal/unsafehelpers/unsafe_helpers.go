// Package unsafehelpers centralises the experience store's unavoidable use
// of the `unsafe` standard-library package so the rest of the codebase stays
// clean and easy to audit. Every helper documents clear pre-/post-
// conditions.
//
// DISCLAIMER: these helpers deliberately break Go's memory-safety model for
// zero-allocation conversions. Use ONLY inside this repository; they are not
// part of the public API and may change without notice.
//
// All functions are cgo-free and pure Go.
//
// © 2025 sugarchess authors. MIT License.
package unsafehelpers

import "unsafe"

/* -------------------------------------------------------------------------
   Zero-copy string/[]byte conversions
   ------------------------------------------------------------------------- */

// StringToBytes re-interprets string data as a byte slice. The slice MUST
// remain read-only — writing to it mutates immutable string storage. Used
// by the format codecs to compare a file's leading bytes against the V1/V2
// signature constants without allocating a []byte copy of the constant on
// every detection attempt.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	strHdr := (*[2]uintptr)(unsafe.Pointer(&s))
	return unsafe.Slice((*byte)(unsafe.Pointer(strHdr[0])), strHdr[1])
}
