package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// traceKeys lists the trace keys of all packages taking part in compiles.
var traceKeys = []string{
	"matpack.chunk",
	"matpack.shader",
	"matpack.query",
	"matpack.blob",
	"matpack.header",
	"matpack.compiler",
	"matpack.manifest",
}

// printer formats byte counts in summaries.
var printer = message.NewPrinter(language.English)

func main() {
	commando.
		SetExecutableName("matc").
		SetVersion("v0.1.0").
		SetDescription("Material package compiler: packages shaders for runtime loading.")

	commando.
		Register("compile").
		SetDescription("Compile a material package into an indexed blob, a byte-array header, or a raw copy.").
		SetShortDescription("compile a package").
		AddArgument("package", "material package file path", "").
		AddFlag("output,o", "output file ('-' for stdout)", commando.String, "-").
		AddFlag("mode,m", "output mode: blob|header|raw", commando.String, "blob").
		AddFlag("backend,b", "shaders to package in blob mode: opengl|vulkan|metal", commando.String, "opengl").
		AddFlag("debug,d", "prepend a banner to header output", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runCompileCommand)

	commando.
		Register("build").
		SetDescription("Build a material package from a YAML manifest, translating WGSL shaders for each backend.").
		SetShortDescription("build a package").
		AddArgument("manifest", "YAML material manifest", "").
		AddFlag("output,o", "output package file (default: <name>.pkg)", commando.String, "").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runBuildCommand)

	commando.
		Register("inspect").
		SetDescription("Print the index of an indexed blob.").
		SetShortDescription("inspect a blob").
		AddArgument("blob", "indexed blob file path", "").
		AddFlag("reflect,r", "print the reflection metadata", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runInspectCommand)

	commando.
		Register("describe").
		SetDescription("Print name, parameters and shaders of a material package.").
		SetShortDescription("describe a package").
		AddArgument("package", "material package file path (binary or byte listing)", "").
		AddFlag("backend,b", "backend whose shaders to list: opengl|vulkan|metal", commando.String, "opengl").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runDescribeCommand)

	commando.Parse(nil)
}

// setupTracing routes all package tracers to the Go logger, at the level
// given by the --trace flag.
func setupTracing(flags map[string]commando.FlagValue) {
	level := mustFlagString(flags["trace"], "trace")
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	if err := setTraceLevel(level); err != nil {
		fatalf("%v", err)
	}
}

// setTraceLevel sets the level of all package tracers.
func setTraceLevel(level string) error {
	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch strings.ToLower(level) {
		case "debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "info":
			t.SetTraceLevel(tracing.LevelInfo)
		case "error", "":
			t.SetTraceLevel(tracing.LevelError)
		default:
			return fmt.Errorf("invalid trace level: %s", level)
		}
	}
	return nil
}

// invocation reconstructs the command line for header banners.
func invocation(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\r\"'") {
			a = fmt.Sprintf("%q", a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

func requiredArg(args map[string]commando.ArgValue, name string) string {
	v := strings.TrimSpace(args[name].Value)
	if v == "" {
		fatalf("%s is required", name)
	}
	return v
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return strings.TrimSpace(s)
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "matc: "+format+"\n", args...)
	os.Exit(1)
}
