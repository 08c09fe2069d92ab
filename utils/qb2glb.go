package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/qbtool/api"
	"github.com/voxelsplace/qbtool/qb"
)

// RunQB2GLB converts a .qb (or .qb.zst) file into a .glb.
func RunQB2GLB(inPath, outPath string) error {
	return convertQB2GLB(inPath, outPath, LoadExportConfig())
}

func convertQB2GLB(inPath, outPath string, cfg ExportConfig) error {
	if !qb.CanImport(inPath) {
		return fmt.Errorf("%s: not a .qb file", inPath)
	}
	dec := qb.Decoder{Warnf: func(format string, args ...any) {
		fmt.Printf("Warning: %s: %s\n", inPath, fmt.Sprintf(format, args...))
	}}
	grid, err := dec.LoadGrid(inPath)
	if err != nil {
		return err
	}
	if grid.Clipped > 0 {
		fmt.Printf("Warning: %s: %d voxels outside the model bounds were dropped\n", inPath, grid.Clipped)
	}
	doc, err := api.GridToDocument(grid, cfg.glbOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return gltf.SaveBinary(doc, outPath)
}
