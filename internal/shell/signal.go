package shell

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Signal strategies.
const (
	SignalFile = "file"
	SignalPipe = "pipe"
)

// Release bytes written by the driver.
const (
	skipByte = '0'
	goByte   = '1'
)

// pipeFD is the descriptor under which the shell inherits the signal pipe.
const pipeFD = 3

// Signaler releases wait steps of the shell script.
type Signaler interface {
	// WaitArgs returns the helper arguments of the wait step for index
	WaitArgs(index int) []string
	// Attach prepares cmd before it is started
	Attach(cmd *exec.Cmd)
	// Release hands one byte per example to the shell, in order
	Release(p []byte) error
	// Close releases the signaler's resources
	Close() error
}

// FileSignaler appends release bytes to a side-channel file that the wait
// steps poll.
type FileSignaler struct {
	path string
	file *os.File
}

// NewFileSignaler creates (or truncates) the side-channel file at path.
func NewFileSignaler(path string) (*FileSignaler, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create side-channel file: %w", err)
	}
	return &FileSignaler{path: path, file: f}, nil
}

func (s *FileSignaler) WaitArgs(index int) []string {
	return []string{"wait", SignalFile, s.path, strconv.Itoa(index)}
}

func (s *FileSignaler) Attach(*exec.Cmd) {}

// Release appends p and syncs so that the polling helper sees it.
func (s *FileSignaler) Release(p []byte) error {
	if _, err := s.file.Write(p); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *FileSignaler) Close() error {
	return s.file.Close()
}

// PipeSignaler writes release bytes into a pipe inherited by the shell.
type PipeSignaler struct {
	r *os.File
	w *os.File
}

// NewPipeSignaler creates the signal pipe.
func NewPipeSignaler() (*PipeSignaler, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal pipe: %w", err)
	}
	return &PipeSignaler{r: r, w: w}, nil
}

// WaitArgs ignores index: the pipe delivers bytes in release order.
func (s *PipeSignaler) WaitArgs(int) []string {
	return []string{"wait", "fd", strconv.Itoa(pipeFD)}
}

// Attach passes the read end as the shell's first extra descriptor.
func (s *PipeSignaler) Attach(cmd *exec.Cmd) {
	cmd.ExtraFiles = append(cmd.ExtraFiles, s.r)
}

func (s *PipeSignaler) Release(p []byte) error {
	_, err := s.w.Write(p)
	return err
}

func (s *PipeSignaler) Close() error {
	werr := s.w.Close()
	rerr := s.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
