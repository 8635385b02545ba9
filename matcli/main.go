package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/matpack/blob"
	"github.com/npillmayer/matpack/compiler"
	"github.com/npillmayer/matpack/internal/pkgload"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'matpack.cli'
func tracer() tracing.Trace {
	return tracing.Select("matpack.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":   "go",
		"trace.matpack.cli": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	blobname := flag.String("blob", "", "Indexed blob to load")
	pkgname := flag.String("package", "", "Material package to compile and load")
	backendname := flag.String("backend", "opengl", "Backend of package shaders [opengl|vulkan|metal]")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the material blob CLI")
	//
	// set up REPL
	repl, err := readline.New("mat > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{repl: repl, selected: -1}
	//
	// load blob to use
	if err := intp.load(*blobname, *pkgname, *backendname); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	name     string
	blob     *blob.Blob
	repl     *readline.Instance
	selected int // index of the selected entry, or -1
}

func (intp *Intp) String() string {
	if intp == nil || intp.blob == nil {
		return "()"
	}
	if intp.selected < 0 {
		return fmt.Sprintf("( %s )", intp.name)
	}
	e := intp.blob.Entries[intp.selected]
	return fmt.Sprintf("( %s ) -> [%d] %s", intp.name, intp.selected, e.Key.Describe())
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

// Command is the sequence of ops parsed from one input line.
type Command struct {
	ops []Op
}

const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	LIST
	ENTRY
	KEY
	REFLECT
	DUMP
)

var opMap = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"list":    LIST,
	"entry":   ENTRY,
	"key":     KEY,
	"reflect": REFLECT,
	"dump":    DUMP,
}

var opNames = []string{
	"quit",
	"help",
	"list",
	"entry",
	"key",
	"reflect",
	"dump",
}

// parseCommand splits a line into ops like "entry:3", "key:0x00020103" or
// "dump:hex". Unknown ops turn into help. Ops following a quit are dropped.
func (intp *Intp) parseCommand(line string) (*Command, error) {
	steps := strings.Fields(line)
	if len(steps) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := &Command{ops: make([]Op, 0, len(steps))}
	for _, step := range steps {
		c := strings.Split(step, ":")
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		if code == QUIT {
			cmd.ops = append(cmd.ops, Op{code: QUIT})
			break
		}
		op := Op{code: code, arg: getOptArg(c, 1), format: getOptArg(c, 2)}
		tracer().Debugf("parsed command: %s %q", opNames[code], op.arg)
		cmd.ops = append(cmd.ops, op)
	}
	return cmd, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:    quitOp,
	HELP:    helpOp,
	LIST:    listOp,
	ENTRY:   entryOp,
	KEY:     keyOp,
	REFLECT: reflectOp,
	DUMP:    dumpOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.ops)
	for _, c := range cmd.ops {
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Blob Loading -----------------------------------------------------

// load reads an indexed blob, or compiles a material package into one.
func (intp *Intp) load(blobname, pkgname, backendname string) error {
	switch {
	case blobname != "" && pkgname != "":
		return errors.New("use either -blob or -package, not both")
	case blobname != "":
		data, err := os.ReadFile(blobname)
		if err != nil {
			return err
		}
		return intp.setBlob(blobname, data)
	case pkgname != "":
		backend, err := shader.ParseBackend(backendname)
		if err != nil {
			return err
		}
		p, err := pkgload.LoadMaterialPackage(pkgname, backend)
		if err != nil {
			return err
		}
		data, err := compileBlob(p.Binary, backend)
		if err != nil {
			return err
		}
		return intp.setBlob(p.Name, data)
	}
	return errors.New("no blob given, use -blob or -package")
}

func (intp *Intp) setBlob(name string, data []byte) error {
	b, err := blob.Decode(data)
	if err != nil {
		return err
	}
	if err := b.Verify(); err != nil {
		tracer().Errorf("blob %s: %v", name, err)
	}
	intp.name, intp.blob, intp.selected = name, b, -1
	tracer().Infof("loaded blob %s with %d shaders", name, len(b.Entries))
	return nil
}

// compileBlob encodes a material package as an indexed blob in memory.
func compileBlob(pkg []byte, backend shader.Backend) ([]byte, error) {
	var buf bytes.Buffer
	err := compiler.Compile(pkg, compiler.Config{
		Mode:    compiler.ModeBlob,
		Backend: backend,
		Output:  compiler.WriterOutput{W: &buf, Name: "memory"},
	})
	return buf.Bytes(), err
}

// ----------------------------------------------------------------------

var errNoBlob = errors.New("no blob loaded")
var errNoEntry = errors.New("no entry selected")

func (intp *Intp) checkEntry() (int, error) {
	if intp.blob == nil {
		return -1, errNoBlob
	}
	if intp.selected < 0 {
		return -1, errNoEntry
	}
	return intp.selected, nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
