package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHelper(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := RunHelper(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelperFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	code, stdout, _ := runHelper("format", out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "\n", stdout, "missing capture file is empty output")

	require.NoError(t, os.WriteFile(out, []byte("a\nb\n"), 0o600))
	code, stdout, _ = runHelper("format", out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "\"a\\nb\\n\"\n", stdout)
}

func TestHelperPrint(t *testing.T) {
	code, stdout, _ := runHelper("print", "6f6f70730a", "2")
	assert.Equal(t, 2, code)
	assert.Equal(t, "oops\n", stdout)

	code, _, stderr := runHelper("print", "zz", "2")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid text")
}

func TestHelperWaitFile(t *testing.T) {
	ipc := filepath.Join(t.TempDir(), "ipc")
	require.NoError(t, os.WriteFile(ipc, []byte("01"), 0o600))

	code, _, _ := runHelper("wait", "file", ipc, "0")
	assert.Equal(t, 0, code)
	code, _, _ = runHelper("wait", "file", ipc, "1")
	assert.Equal(t, 1, code)
}

func TestHelperWaitFileBlocksUntilReleased(t *testing.T) {
	ipc := filepath.Join(t.TempDir(), "ipc")
	sig, err := NewFileSignaler(ipc)
	require.NoError(t, err)
	defer sig.Close()

	done := make(chan int)
	go func() {
		code, _, _ := runHelper("wait", "file", ipc, "1")
		done <- code
	}()

	require.NoError(t, sig.Release([]byte("0")))
	select {
	case <-done:
		t.Fatal("wait returned before its index was released")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, sig.Release([]byte("1")))
	select {
	case code := <-done:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return after release")
	}
}

func TestHelperWaitFileMissing(t *testing.T) {
	code, _, stderr := runHelper("wait", "file", filepath.Join(t.TempDir(), "gone"), "0")
	assert.Equal(t, 0, code, "unreadable signals skip")
	assert.NotEmpty(t, stderr)
}

func TestHelperInvalidArguments(t *testing.T) {
	code, _, _ := runHelper()
	assert.Equal(t, 2, code)
	code, _, _ = runHelper("dance")
	assert.Equal(t, 2, code)
}

func TestReleaseStatus(t *testing.T) {
	assert.Equal(t, 0, releaseStatus('0'))
	assert.Equal(t, 1, releaseStatus('1'))
	assert.Equal(t, 0, releaseStatus('x'))
}
