package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/voxelsplace/qbtool/api"
	"github.com/voxelsplace/qbtool/qb"
)

// RunInfo prints header fields and content statistics of a .qb file to w.
func RunInfo(inPath string, w io.Writer) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	info, err := api.QBInfo(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	fmt.Fprintf(w, "file:       %s\n", inPath)
	fmt.Fprintf(w, "version:    %s\n", info.Version)
	fmt.Fprintf(w, "compressed: %t\n", info.Compressed)
	fmt.Fprintf(w, "size:       %dx%dx%d (file x,y,z)\n", info.FileSize[0], info.FileSize[1], info.FileSize[2])
	fmt.Fprintf(w, "grid:       %dx%dx%d\n", info.GridSize[0], info.GridSize[1], info.GridSize[2])
	fmt.Fprintf(w, "filled:     %d\n", info.Filled)
	if info.Clipped > 0 {
		fmt.Fprintf(w, "clipped:    %d\n", info.Clipped)
	}
	fmt.Fprintf(w, "checksum:   %016x\n", info.Checksum)
	return nil
}

// RunCompress writes inPath as a zstd-wrapped .qb.zst file.
func RunCompress(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	if _, err := qb.LoadGridFromBytes(data); err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	out, err := qb.CompressQB(data, LoadExportConfig().ZstdLevel)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Printf(".qb.zst saved (%d -> %d bytes)\n", len(data), len(out))
	return nil
}
