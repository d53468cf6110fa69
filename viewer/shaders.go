package main

//go:generate glslc shaders/shader.vert -o shaders/vert.spv
//go:generate glslc shaders/shader.frag -o shaders/frag.spv

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

type assets struct {
	vertexShader   []byte
	fragmentShader []byte
	pipelineCache  []byte
}

// loadAssets reads the compiled shaders and, when cachePath is set, the
// pipeline cache from the previous run. A missing cache file is not an error.
func loadAssets(shaderDir, cachePath string) (*assets, error) {
	var a assets
	var g errgroup.Group

	g.Go(func() error {
		var err error
		a.vertexShader, err = os.ReadFile(filepath.Join(shaderDir, "vert.spv"))
		return errors.Wrap(err, "failed to read vertex shader")
	})

	g.Go(func() error {
		var err error
		a.fragmentShader, err = os.ReadFile(filepath.Join(shaderDir, "frag.spv"))
		return errors.Wrap(err, "failed to read fragment shader")
	})

	if cachePath != "" {
		g.Go(func() error {
			data, err := os.ReadFile(cachePath)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			a.pipelineCache = data
			return errors.Wrap(err, "failed to read pipeline cache")
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return &a, nil
}
