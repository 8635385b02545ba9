package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/matpack/compiler"
	"github.com/npillmayer/matpack/internal/manifest"
	"github.com/npillmayer/matpack/shader"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runCompileCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	pkgPath := requiredArg(args, "package")
	mode, err := compiler.ParseOutputMode(mustFlagString(flags["mode"], "mode"))
	if err != nil {
		fatalf("%v", err)
	}
	backend, err := shader.ParseBackend(mustFlagString(flags["backend"], "backend"))
	if err != nil {
		fatalf("%v", err)
	}
	pkg, err := os.ReadFile(pkgPath)
	if err != nil {
		fatalf("cannot read package %s: %v", pkgPath, err)
	}
	conf := compiler.Config{
		Mode:       mode,
		Output:     outputFor(mustFlagString(flags["output"], "output")),
		Backend:    backend,
		Debug:      mustFlagBool(flags["debug"], "debug"),
		Invocation: invocation(os.Args),
	}
	if err := compiler.Compile(pkg, conf); err != nil {
		fatalf("%v", err)
	}
	reportWritten(conf.Output, mode.String())
}

func runBuildCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	manifestPath := requiredArg(args, "manifest")
	m, err := manifest.Load(manifestPath)
	if err != nil {
		fatalf("%v", err)
	}
	pkg, err := m.Build()
	if err != nil {
		fatalf("%v", err)
	}
	outPath := mustFlagString(flags["output"], "output")
	if outPath == "" {
		outPath = defaultPackagePath(m.Name)
	}
	out := outputFor(outPath)
	if err := compiler.Compile(pkg, compiler.Config{Mode: compiler.ModeRaw, Output: out}); err != nil {
		fatalf("%v", err)
	}
	reportWritten(out, "package")
}

// outputFor maps an --output value to a compiler output; "-" is stdout.
func outputFor(path string) compiler.Output {
	if path == "" || path == "-" {
		return compiler.WriterOutput{W: os.Stdout, Name: "stdout"}
	}
	return compiler.FileOutput{Path: path}
}

// defaultPackagePath derives a package file name from a material name.
func defaultPackagePath(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == '/' || r == ' ' {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	return name + ".pkg"
}

// reportWritten prints a summary for file outputs. Output to stdout stays
// free of anything but the artifact.
func reportWritten(out compiler.Output, what string) {
	fo, ok := out.(compiler.FileOutput)
	if !ok {
		return
	}
	fi, err := os.Stat(fo.Path)
	if err != nil {
		fatalf("%v", err)
	}
	pterm.Info.Println(printer.Sprintf("wrote %s %s (%d bytes)", what, fo.Path, fi.Size()))
}
