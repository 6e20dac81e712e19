package icons

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrAssetNotFound is returned by a Prober when the asset does not exist.
var ErrAssetNotFound = errors.New("icon asset not found")

// Prober checks whether an icon asset exists.
type Prober interface {
	Probe(name string) error
}

// FSProber probes assets in a file system, usually os.DirFS of the icon directory.
type FSProber struct {
	FS fs.FS
}

func (p FSProber) Probe(name string) error {
	info, err := fs.Stat(p.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrAssetNotFound, name)
	}
	return nil
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(name string) error

func (f ProberFunc) Probe(name string) error {
	return f(name)
}
