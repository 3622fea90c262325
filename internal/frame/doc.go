// Package frame implements the binary packet framing spoken between the
// caller and the muxproc helper.
//
// Every packet on the channel is length-prefixed with a 2-byte big-endian
// length. Packets sent by the caller carry raw stdin bytes; a zero-length
// packet marks end of input. Packets sent by the helper carry a one-byte
// tag followed by the payload:
//
//	'o' <chunk>   stdout data
//	'e' <chunk>   stderr data
//	'x' <status>  child exited; status is a 4-byte big-endian signed integer
package frame
