//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/voxelsplace/qbtool/utils"
)

func usage() {
	fmt.Println("Usage: qbtool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  qb2glb input.qb output.glb                 (convert .qb or .qb.zst -> .glb using greedy mesh)")
	fmt.Println("  batch output_dir input1.qb [input2.qb ...]  (convert many .qb files concurrently)")
	fmt.Println("  info input.qb                               (print header and voxel statistics)")
	fmt.Println("  zst input.qb output.qb.zst                  (wrap a .qb file in a zstd frame)")
	fmt.Println("Preferences are read from qbtool.json (or $QBTOOL_CONFIG) when present.")
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "qb2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunQB2GLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "batch":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunBatchQB2GLB(os.Args[3:], os.Args[2], 0); err != nil {
			fail(err)
		}
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunInfo(os.Args[2], os.Stdout); err != nil {
			fail(err)
		}
		return
	case "zst":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunCompress(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}
