package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	f, err := NewFiles(dir)
	require.NoError(t, err)

	name, err := f.Save("My CV.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_My_CV.pdf"), name)

	p, err := f.Path(name)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))

	other, err := f.Save("My CV.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	require.NoError(t, f.Remove(name))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, f.Remove(name), "missing files are ignored")
	assert.NoError(t, f.Remove(""))
}

func TestSaveRejectsEmptyName(t *testing.T) {
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)
	_, err = f.Save("../..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestPathRejectsTraversal(t *testing.T) {
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)
	for _, bad := range []string{"", "..", "../etc/passwd", "a/b.pdf", `a\b.pdf`} {
		_, err := f.Path(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("me.jpeg", PhotoExtensions))
	assert.True(t, Allowed("ME.PNG", PhotoExtensions))
	assert.False(t, Allowed("png", PhotoExtensions))
	assert.False(t, Allowed("me.gif", PhotoExtensions))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeName("../../etc/passwd"))
	assert.Equal(t, "cv.pdf", SanitizeName(`C:\Users\me\cv.pdf`))
	assert.Equal(t, "rsum.pdf", SanitizeName("résumé.pdf"))
	assert.Equal(t, "my_cv.pdf", SanitizeName("my cv.pdf"))
}
