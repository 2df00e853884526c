package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "jane.TXT", "Jane Roe\r\n\tSenior   Engineer\r\n\r\n\r\n\r\n• Go\n• Kubernetes\n3\nPage 2 of 2\nBachelor of Science")

	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\n Senior Engineer\n\n- Go\n- Kubernetes\nBachelor of Science", text)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(writeFile(t, "resume.docx", "whatever content is long enough"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Load(writeFile(t, "short.txt", "  Jane   Roe \n\n "))
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "broken.pdf", "this is not a pdf file at all"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/cv.pdf"))
	assert.True(t, Supported("cv.Txt"))
	assert.False(t, Supported("cv.docx"))
	assert.False(t, Supported("cv"))
}

func TestCheck(t *testing.T) {
	_, err := Check("12345678901234567890")
	assert.NoError(t, err)

	_, err = Check("1234567890 123456789")
	assert.ErrorIs(t, err, ErrTooShort)
}
