package snapshot_test

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/internal/snapshot"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func readArchive(t *testing.T, a *snapshot.Archive) map[string]string {
	t.Helper()

	gz, err := gzip.NewReader(a.Reader())
	require.NoError(t, err)

	got := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		got[hdr.Name] = string(data)
		assert.True(t, hdr.ModTime.Equal(time.Unix(0, 0)), hdr.Name)
	}

	return got
}

func TestCreate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"train.py":         "print('train')",
		"lib/utils.py":     "def f(): pass",
		".git/HEAD":        "ref: refs/heads/main",
		"outputs/model.pt": "weights",
		"notes.log":        "debug",
		".amlignore":       "# local only\noutputs/\n*.log\n",
	})

	archive, err := snapshot.Create(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{".amlignore", "lib/utils.py", "train.py"}, archive.Files)
	assert.Len(t, archive.ID, 64)
	assert.Equal(t, int64(len(archive.Data)), archive.Size)
	assert.Equal(t, map[string]string{
		".amlignore":   "# local only\noutputs/\n*.log\n",
		"lib/utils.py": "def f(): pass",
		"train.py":     "print('train')",
	}, readArchive(t, archive))
}

func TestCreateDeterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"train.py":     "print('train')",
		"lib/utils.py": "def f(): pass",
	}

	first, second := t.TempDir(), t.TempDir()
	writeTree(t, first, files)
	writeTree(t, second, files)

	// Modification times differ but are not archived.
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(second, "train.py"), past, past))

	a, err := snapshot.Create(first)
	require.NoError(t, err)
	b, err := snapshot.Create(second)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	writeTree(t, second, map[string]string{"train.py": "print('changed')"})
	c, err := snapshot.Create(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestCreateGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"train.py":                "",
		"__pycache__/train.pyc":   "",
		"data/raw.csv":            "",
		".gitignore":              "__pycache__\n/data/\n",
		"nested/keep/__init__.py": "",
	})

	archive, err := snapshot.Create(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "nested/keep/__init__.py", "train.py"}, archive.Files)
}

func TestCreateIgnoreRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"train.py":            "",
		"debug.log":           "",
		"keep.log":            "",
		"logs/keep.log":       "",
		"build/out.txt":       "",
		"build/tmp/y.txt":     "",
		"build/a/b/tmp/x.txt": "",
		"docs/index.md":       "",
		"notes/docs":          "",
		"tmp/keep.txt":        "",
		".gitignore":          "*.log\n!keep.log\nbuild/**/tmp\ndocs/\ntmp/\n!tmp/keep.txt\n",
	})

	archive, err := snapshot.Create(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".gitignore",
		"build/out.txt",
		"keep.log",
		"logs/keep.log",
		"notes/docs",
		"train.py",
	}, archive.Files)
}

func TestCreateNotADirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"train.py": ""})

	_, err := snapshot.Create(filepath.Join(dir, "train.py"))
	require.Error(t, err)

	_, err = snapshot.Create(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestBlobPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "snapshots/abc.tar.gz", snapshot.BlobPath(&snapshot.Archive{ID: "abc"}))
}

func TestAzureBlobUploaderRejectsFileDatastore(t *testing.T) {
	t.Parallel()

	u := snapshot.NewAzureBlobUploader(nil, nil)
	_, err := u.Upload(context.Background(), &model.Datastore{Name: "files", Kind: model.AzureFileDatastore}, &snapshot.Archive{ID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshots need a blob datastore")
}
