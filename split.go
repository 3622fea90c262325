package muxproc

import "strings"

// SplitCommand splits a shell-style invocation string into a command and its
// argument list: the command is everything before the first space, and the
// remainder is split on every space. There is no quoting and no escaping;
// callers needing either should build the argument list themselves.
//
//	SplitCommand("cat -n file.txt")  // "cat", ["-n", "file.txt"]
//	SplitCommand("ls")               // "ls", []
func SplitCommand(s string) (string, []string) {
	command, rest, found := strings.Cut(s, " ")
	if !found {
		return command, nil
	}

	return command, strings.Split(rest, " ")
}
