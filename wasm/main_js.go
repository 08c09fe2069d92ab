//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/qbtool/api"
)

func bytesArg(args []js.Value) []byte {
	buf := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(buf, args[0])
	return buf
}

func toUint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func qb2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing qb bytes")
	}
	out, err := api.QBToGLB(bytesArg(args))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func qbinfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing qb bytes")
	}
	info, err := api.QBInfo(bytesArg(args))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("version", info.Version)
	result.Set("compressed", info.Compressed)
	result.Set("width", int(info.GridSize[0]))
	result.Set("height", int(info.GridSize[1]))
	result.Set("depth", int(info.GridSize[2]))
	result.Set("filled", info.Filled)
	result.Set("clipped", info.Clipped)
	return result
}

func qb2zst(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing qb bytes")
	}
	out, err := api.CompressQB(bytesArg(args))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func main() {
	js.Global().Set("qb2glb", js.FuncOf(qb2glb))
	js.Global().Set("qbinfo", js.FuncOf(qbinfo))
	js.Global().Set("qb2zst", js.FuncOf(qb2zst))
	select {}
}
