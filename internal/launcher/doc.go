// Package launcher discovers the muxproc helper binary, builds its argument
// vector, and starts it as a child process connected through the framed
// packet channel.
//
// Discovery searches in the following order:
//  1. Explicit path in Config.HelperPath (if provided)
//  2. The MUXPROC_HELPER environment variable
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// The helper argument vector has the shape
//
//	[--out <redirect>] [--err <redirect>] -- <command> <arg>...
//
// where a redirect value is empty (stream open normally), "null" (suppress),
// or the name of the other stream (merge into it).
package launcher
