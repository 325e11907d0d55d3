package processes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPlaceholders(t *testing.T) {
	values := map[string]string{"wallpaper": "/bg/a b.png"}

	assert.Equal(t, "feh '/bg/a b.png'", ExpandPlaceholders("feh '%wallpaper%'", values))
	assert.Equal(t, "echo /bg/a b.png /bg/a b.png", ExpandPlaceholders("echo %wallpaper% %wallpaper%", values))
	assert.Equal(t, "echo %screenshot%", ExpandPlaceholders("echo %screenshot%", values))
	assert.Equal(t, "echo 100%", ExpandPlaceholders("echo 100%", values))
}

func TestRunDetachedRequiresCommand(t *testing.T) {
	pid, err := RunDetached(true)
	assert.Error(t, err)
	assert.Equal(t, -1, pid)
}

func TestRunDetachedMissingBinary(t *testing.T) {
	pid, err := RunDetached(true, "/nonexistent/binary")
	assert.Error(t, err)
	assert.Equal(t, -1, pid)
}

func TestRunPostCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "applied")

	pid, err := RunPostCommand("printf %s '%wallpaper%' > "+out, "/bg/one.png", true)
	require.NoError(t, err)
	assert.Positive(t, pid)

	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(out)
		return err == nil && string(content) == "/bg/one.png"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRunPostCommandEmpty(t *testing.T) {
	pid, err := RunPostCommand("", "/bg/one.png", true)
	assert.NoError(t, err)
	assert.Equal(t, -1, pid)
}
