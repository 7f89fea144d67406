package shell

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/doctest/internal/logger"
)

var (
	// ErrShellExited indicates the shell stopped before reporting the output
	// of a released example.
	ErrShellExited = errors.New("shell exited before reporting example output")

	// ErrNoExamples indicates a script was requested for a DocTest without
	// examples.
	ErrNoExamples = errors.New("doctest has no examples")
)

// driver is the releasing side of the protocol.
type driver struct {
	signal Signaler
	out    *bufio.Reader
	next   int // first index not yet released or skipped
	exited bool
	log    Logger
}

func newDriver(signal Signaler, out io.Reader, log Logger) *driver {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &driver{signal: signal, out: bufio.NewReader(out), log: log}
}

// skipUntil skips every example in [next, n).
func (d *driver) skipUntil(n int) error {
	count := n - d.next
	if count <= 0 {
		return nil
	}
	if d.exited {
		return ErrShellExited
	}

	if err := d.signal.Release(bytes.Repeat([]byte{skipByte}, count)); err != nil {
		return fmt.Errorf("failed to skip examples %d to %d: %w", d.next, n-1, err)
	}
	for i := d.next; i < n; i++ {
		line, err := d.readLine()
		if err != nil {
			return err
		}
		if line != "" {
			d.log.LogDebug(fmt.Sprintf("skipped example %d reported output %q", i, line))
		}
	}
	d.log.LogTrace(fmt.Sprintf("skipped examples %d to %d", d.next, n-1))
	d.next = n
	return nil
}

// execute releases example n and returns its combined output.
func (d *driver) execute(n int) (string, error) {
	if n < d.next {
		return "", fmt.Errorf("example %d already released (next is %d)", n, d.next)
	}
	if err := d.skipUntil(n); err != nil {
		return "", err
	}
	if d.exited {
		return "", ErrShellExited
	}

	if err := d.signal.Release([]byte{goByte}); err != nil {
		return "", fmt.Errorf("failed to release example %d: %w", n, err)
	}
	d.next = n + 1
	d.log.LogTrace(fmt.Sprintf("released example %d", n))

	line, err := d.readLine()
	if err != nil {
		return "", err
	}
	return decodeOutput(line)
}

func (d *driver) readLine() (string, error) {
	line, err := d.out.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			d.exited = true
			return "", ErrShellExited
		}
		return "", fmt.Errorf("failed to read shell output: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// decodeOutput parses one output line. An empty line is empty output.
func decodeOutput(line string) (string, error) {
	if line == "" {
		return "", nil
	}
	var out string
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return "", fmt.Errorf("malformed output line %q: %w", line, err)
	}
	return out, nil
}

// encodeOutput is the inverse of decodeOutput, including its trailing
// newline.
func encodeOutput(w io.Writer, out []byte) error {
	if len(out) == 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(string(out))
}
