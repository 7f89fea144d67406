// Package shell runs shell doctests inside one persistent shell process.
//
// # Why one process
//
// Examples of a shell DocTest share state: a "cd" or a variable assignment
// in one example is visible in the next. Every example of a DocTest is
// therefore concatenated into a single script that runs in a single shell,
// while the driver still collects the output of each example separately and
// may skip examples without running them.
//
// # Script layout
//
// For every example, in index order, the script holds a wait step guarding
// the example source. The combined output of the block is captured to a file
// and then serialized by the helper program as one JSON line on the shell's
// stdout:
//
//	{ 'doctest' shell-helper wait file '/tmp/doctest-…/ipc' 0 || {
//	echo hello
//	} ; } >'/tmp/doctest-…/out' 2>&1
//	'doctest' shell-helper format '/tmp/doctest-…/out'
//
// The wait step exits 0 for "skip" and 1 for "go". The shell's || operator
// turns that exit status into the decision to run the guarded source.
// Skipped blocks produce an empty line.
//
// # Driver protocol
//
// The driver keeps the index of the next unreleased example:
//
//	skipUntil(n)  writes one '0' per index in [next, n), reads and discards
//	              that many lines
//	execute(n)    skipUntil(n), writes one '1', reads one line and decodes it
//
// On teardown skipUntil(len(examples)) drains the remaining wait steps, the
// shell is waited on, and the temporary directory is removed. Both sides
// consume releases and lines in the same strictly increasing order, and the
// driver never reads a line it has not released.
//
// # Signalers
//
// Two strategies release wait steps:
//
//	file  append-only side-channel file; the wait step polls its size until
//	      a byte exists at the example's offset (default, portable)
//	pipe  the read end of a pipe is inherited as fd 3; the wait step blocks
//	      reading exactly one byte (not available for cmd)
//
// # Syntax preflight
//
// Before the script is written, each source is checked with "sh -n". A
// source that does not parse is replaced by a call to the helper's print
// command, which replays the checker's message and exit status, so one bad
// fragment cannot break the surrounding script.
//
// # Helper program
//
// The helper is the doctest binary itself, invoked with the hidden
// "shell-helper" command. RunHelper implements it.
package shell
