// Package wkdm declares the interface for the WKdm page compressor without
// implementing it. WKdm is a dictionary-based partial-match compressor
// ("direct-mapped partial matching compressor with simple 22/10 split",
// Wilson & Kaplan) operating on fixed 1024-word (4096-byte) pages; a
// complete implementation would pack each page into a four-word header, a
// 64-word two-bit tag area, a variable full-word-miss area, a variable
// four-bit dictionary-queue-position area, and a variable ten-bit low-bits
// area. None of that packing is implemented here — compression is out of
// scope — but the function signatures are declared so a caller can see
// where it would plug in.
package wkdm

import "errors"

// WordsPerPage is the page granularity WKdm operates on: 1024 32-bit words,
// matching the original implementation's fixed page size.
const WordsPerPage = 1024

// ErrNotImplemented is returned by both Compress and Decompress. The WKdm
// algorithm itself — dictionary matching, tag packing, queue-position
// tracking — is not implemented in this module.
var ErrNotImplemented = errors.New("wkdm: compression not implemented")

// Compress would pack src, a page of exactly WordsPerPage 32-bit words,
// into dst using dictionary and partial-match encoding, returning the
// number of words actually written to dst. It always returns
// ErrNotImplemented.
func Compress(src []uint32, dst []uint32) (int, error) {
	return 0, ErrNotImplemented
}

// Decompress would expand a page previously produced by Compress, reading
// exactly words 32-bit words from src and writing WordsPerPage words to
// dst. It always returns ErrNotImplemented.
func Decompress(src []uint32, words int, dst []uint32) error {
	return ErrNotImplemented
}
