package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/qbtool/qb"
)

// RunBatchQB2GLB converts every input into outDir/<model>.glb using up to
// workers concurrent decodes. The first failure stops the batch.
func RunBatchQB2GLB(inputFiles []string, outDir string, workers int) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .qb files provided")
	}
	cfg := LoadExportConfig()
	if workers < 1 {
		workers = cfg.Workers
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, in := range inputFiles {
		in := in // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out := filepath.Join(outDir, qb.ModelName(in)+".glb")
			return convertQB2GLB(in, out, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("Converted %d models in %d ms\n", len(inputFiles), time.Since(start).Milliseconds())
	return nil
}
