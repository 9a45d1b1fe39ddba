// Package snapshot packages a step's source directory into a deterministic archive
// and uploads it next to the data on the workspace's default datastore.
package snapshot

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Archive is a packaged source directory.
type Archive struct {
	// ID is the hex sha256 of the archive, so identical trees share an ID.
	ID    string
	Size  int64
	Files []string
	Data  []byte
}

// Reader returns a reader over the archive data.
func (a *Archive) Reader() io.ReadSeeker {
	return bytes.NewReader(a.Data)
}

// Create packages dir into a gzipped tarball. Entries are sorted and carry no
// timestamps or ownership, so the archive only changes when file contents, names or
// modes do.
func Create(dir string) (*Archive, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat source directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source %s is not a directory", dir)
	}

	rules, err := readIgnoreRules(dir)
	if err != nil {
		return nil, err
	}

	files, err := listFiles(dir, rules)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	gz, err := gzip.NewWriterLevel(buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create gzip writer")
	}
	tw := tar.NewWriter(gz)

	for _, rel := range files {
		err := addFile(tw, dir, rel)
		if err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to close tar writer")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to close gzip writer")
	}

	sum := sha256.Sum256(buf.Bytes())

	return &Archive{
		ID:    hex.EncodeToString(sum[:]),
		Size:  int64(buf.Len()),
		Files: files,
		Data:  buf.Bytes(),
	}, nil
}

func addFile(tw *tar.Writer, dir, rel string) error {
	full := filepath.Join(dir, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", rel)
	}

	hdr := &tar.Header{
		Name:     rel,
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		Typeflag: tar.TypeReg,
		ModTime:  time.Unix(0, 0),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "unable to write header for %s", rel)
	}

	f, err := os.Open(full)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", rel)
	}
	defer f.Close() //nolint:errcheck // read only

	if _, err := io.Copy(tw, f); err != nil {
		return errors.Wrapf(err, "unable to archive %s", rel)
	}

	return nil
}

// listFiles returns the regular files under dir as sorted slash separated relative
// paths, skipping .git and anything the ignore rules exclude.
func listFiles(dir string, rules ignoreRules) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || rules.ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || rules.ignored(rel, false) {
			return nil
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to walk source directory %s", dir)
	}

	sort.Strings(files)

	return files, nil
}
