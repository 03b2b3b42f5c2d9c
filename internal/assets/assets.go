// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/marko-gacesa/netquake/netquake/client"
)

var _ client.AssetLoader = (*Loader)(nil)

// File is a loaded asset. Data is nil when the loader has no directory.
type File struct {
	Name string
	Data []byte
}

// Loader reads assets from a directory tree laid out the way the server names them,
// for example maps/e1m1.bsp or progs/player.mdl.
type Loader struct {
	fsys fs.FS
	log  *slog.Logger
}

// NewLoader returns a loader for the directory. With an empty directory the loader
// only records the names, every asset is reported as present.
func NewLoader(dir string, log *slog.Logger) *Loader {
	l := &Loader{log: log}
	if dir != "" {
		l.fsys = os.DirFS(dir)
	}
	return l
}

// NewLoaderFS returns a loader reading from the file system.
func NewLoaderFS(fsys fs.FS, log *slog.Logger) *Loader {
	return &Loader{fsys: fsys, log: log}
}

func (l *Loader) LoadGeometry(name string) ([]client.Model, error) {
	f, err := l.load(name)
	if err != nil {
		return nil, err
	}

	// inline models are not extracted from the level file
	return []client.Model{f}, nil
}

func (l *Loader) LoadModel(name string) (client.Model, error) {
	return l.load(name)
}

func (l *Loader) LoadSound(name string) (client.Sound, error) {
	return l.load("sound/" + name)
}

func (l *Loader) load(name string) (*File, error) {
	if l.fsys == nil {
		return &File{Name: name}, nil
	}

	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("assets: invalid name %q: %w", name, client.ErrAssetNotFound)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("assets: %s: %w", name, client.ErrAssetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: failed to load %s: %w", name, err)
	}

	l.log.Debug("asset loaded", "name", name, "size", len(data))

	return &File{Name: name, Data: data}, nil
}
