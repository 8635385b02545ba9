package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/npillmayer/matpack/blob"
	"github.com/npillmayer/matpack/internal/pkgload"
	"github.com/npillmayer/matpack/matquery"
	"github.com/npillmayer/matpack/shader"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runInspectCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	path := requiredArg(args, "blob")
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("cannot read blob %s: %v", path, err)
	}
	b, err := blob.Decode(data)
	if err != nil {
		fatalf("cannot decode blob %s: %v", path, err)
	}
	if err := b.Verify(); err != nil {
		pterm.Error.Println(err)
	}
	pterm.Info.Println(printer.Sprintf("%s: %d bytes, header %d bytes, reflection %d bytes, %d shaders",
		path, b.Size(), b.HeaderSize, len(b.Reflection), len(b.Entries)))
	if err := pterm.DefaultTable.WithHasHeader().WithData(indexTable(b)).Render(); err != nil {
		fatalf("%v", err)
	}
	if mustFlagBool(flags["reflect"], "reflect") {
		fmt.Println(string(b.Reflection))
	}
}

// indexTable lists the entries of a blob's index, one row per shader.
func indexTable(b *blob.Blob) [][]string {
	data := [][]string{{"#", "Key", "Model", "Stage", "Variant", "Offset", "Size"}}
	for i, e := range b.Entries {
		data = append(data, []string{
			strconv.Itoa(i),
			e.Key.String(),
			e.Key.Model().String(),
			e.Key.Stage().String(),
			fmt.Sprintf("0x%02x", uint8(e.Key.Flags())),
			strconv.FormatUint(uint64(e.Offset), 10),
			printer.Sprintf("%d", e.Size),
		})
	}
	return data
}

func runDescribeCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	backend, err := shader.ParseBackend(mustFlagString(flags["backend"], "backend"))
	if err != nil {
		fatalf("%v", err)
	}
	p, err := pkgload.LoadMaterialPackage(requiredArg(args, "package"), backend)
	if err != nil {
		fatalf("%v", err)
	}
	info, err := matquery.Describe(p.Reader)
	if err != nil {
		fatalf("%v", err)
	}
	pterm.Info.Printf("material %s, version %d, %s shaders\n", info.Name, info.Version, info.Backend)
	if len(info.Parameters) > 0 {
		if err := pterm.DefaultTable.WithHasHeader().WithData(parameterTable(info)).Render(); err != nil {
			fatalf("%v", err)
		}
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(shaderTable(info)).Render(); err != nil {
		fatalf("%v", err)
	}
}

func parameterTable(info *matquery.MaterialInfo) [][]string {
	data := [][]string{{"Parameter", "Type", "Precision", "Array"}}
	for _, p := range info.Parameters {
		arr := "-"
		if p.ArraySize > 0 {
			arr = strconv.Itoa(int(p.ArraySize))
		}
		data = append(data, []string{p.Name, p.Type, p.Precision, arr})
	}
	return data
}

func shaderTable(info *matquery.MaterialInfo) [][]string {
	data := [][]string{{"Key", "Model", "Stage", "Variant", "Size"}}
	for _, s := range info.Shaders {
		data = append(data, []string{
			s.Key, s.Model, s.Stage, fmt.Sprintf("0x%02x", s.Flags), printer.Sprintf("%d", s.Length),
		})
	}
	return data
}
