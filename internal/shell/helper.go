package shell

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"
)

// HelperCommand is the hidden command under which the doctest binary acts as
// the shell helper.
const HelperCommand = "shell-helper"

// pollInterval is the delay between two looks at the side-channel file.
const pollInterval = time.Millisecond

// RunHelper executes one helper invocation and returns its exit status:
//
//	wait file PATH INDEX   poll PATH until byte INDEX exists, exit with it
//	wait fd N              read one byte from descriptor N, exit with it
//	format PATH            print the contents of PATH as one output line
//	print HEX CODE         write the hex-decoded text, exit with CODE
//
// A wait step that cannot read its signal exits 0 so that the guarded source
// does not run.
func RunHelper(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "shell-helper: missing command")
		return 2
	}

	switch {
	case args[0] == "wait" && len(args) == 4 && args[1] == SignalFile:
		index, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: invalid index %q\n", args[3])
			return 0
		}
		b, err := waitFile(args[2], index)
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: %v\n", err)
			return 0
		}
		return releaseStatus(b)

	case args[0] == "wait" && len(args) == 3 && args[1] == "fd":
		fd, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: invalid descriptor %q\n", args[2])
			return 0
		}
		b, err := waitFD(uintptr(fd))
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: %v\n", err)
			return 0
		}
		return releaseStatus(b)

	case args[0] == "format" && len(args) == 2:
		out, err := os.ReadFile(args[1])
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "shell-helper: %v\n", err)
		}
		if err := encodeOutput(stdout, out); err != nil {
			fmt.Fprintf(stderr, "shell-helper: %v\n", err)
			return 1
		}
		return 0

	case args[0] == "print" && len(args) == 3:
		text, err := hex.DecodeString(args[1])
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: invalid text: %v\n", err)
			return 2
		}
		code, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(stderr, "shell-helper: invalid exit code %q\n", args[2])
			return 2
		}
		if _, err := stdout.Write(text); err != nil {
			return 2
		}
		return code
	}

	fmt.Fprintf(stderr, "shell-helper: invalid arguments %q\n", args)
	return 2
}

// waitFile busy-polls the side-channel file until it holds byte index.
func waitFile(path string, index int64) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 1)
	for {
		info, err := f.Stat()
		if err != nil {
			return 0, err
		}
		if info.Size() > index {
			if _, err := f.ReadAt(buf, index); err != nil {
				return 0, err
			}
			return buf[0], nil
		}
		time.Sleep(pollInterval)
	}
}

// waitFD blocks until one byte can be read from fd.
func waitFD(fd uintptr) (byte, error) {
	f := os.NewFile(fd, "signal")
	if f == nil {
		return 0, fmt.Errorf("invalid descriptor %d", fd)
	}
	buf := make([]byte, 1)
	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, fmt.Errorf("failed to read signal: %w", err)
	}
	return buf[0], nil
}

// releaseStatus maps '0' to 0 (skip) and '1' to 1 (go).
func releaseStatus(b byte) int {
	if b < skipByte || b > '9' {
		return 0
	}
	return int(b - skipByte)
}
