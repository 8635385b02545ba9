package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/matpack/matquery"
	"github.com/npillmayer/matpack/variant"
	"github.com/pterm/pterm"
)

func listOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.blob == nil {
		return errNoBlob, false
	}
	pterm.Printf("Blob has %d entries, header of %d bytes\n", len(intp.blob.Entries), intp.blob.HeaderSize)
	if len(intp.blob.Entries) == 0 {
		return nil, false
	}
	pterm.DefaultTable.WithHasHeader().WithData(entryTable(intp)).Render()
	return nil, false
}

func entryTable(intp *Intp) [][]string {
	data := [][]string{
		{"Index", "Key", "Shader", "Offset", "Size"},
	}
	for i, e := range intp.blob.Entries {
		mark := ""
		if i == intp.selected {
			mark = "*"
		}
		data = append(data, []string{
			fmt.Sprintf("%s%d", mark, i),
			e.Key.String(),
			e.Key.Describe(),
			fmt.Sprintf("%d", e.Offset),
			fmt.Sprintf("%d", e.Size),
		})
	}
	return data
}

// entryOp selects an entry by its position in the index.
func entryOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.blob == nil {
		return errNoBlob, false
	}
	arg, ok := op.hasArg()
	if !ok {
		return fmt.Errorf("usage: entry:<index>"), false
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("entry index not numeric: %v", arg), false
	}
	if i < 0 || i >= len(intp.blob.Entries) {
		return fmt.Errorf("entry index out of range: %d", i), false
	}
	intp.selected = i
	printEntry(intp, i)
	return nil, false
}

// keyOp selects an entry by its variant key.
func keyOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.blob == nil {
		return errNoBlob, false
	}
	arg, ok := op.hasArg()
	if !ok {
		return fmt.Errorf("usage: key:0x<hex>"), false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("key is not a 32-bit hex number: %v", arg), false
	}
	key := variant.Key(n)
	for i, e := range intp.blob.Entries {
		if e.Key == key {
			intp.selected = i
			printEntry(intp, i)
			return nil, false
		}
	}
	return fmt.Errorf("no shader with key %s (%s)", key, key.Describe()), false
}

func printEntry(intp *Intp, i int) {
	e := intp.blob.Entries[i]
	pterm.Printf("Entry %d: key=%s %s offset=%d size=%d\n", i, e.Key, e.Key.Describe(), e.Offset, e.Size)
}

// reflectOp prints the reflection metadata of the blob.
func reflectOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.blob == nil {
		return errNoBlob, false
	}
	if op.arg == "raw" {
		pterm.Println(string(intp.blob.Reflection))
		return nil, false
	}
	info, err := matquery.Parse(intp.blob.Reflection)
	if err != nil {
		return err, false
	}
	pterm.Printf("Material %s, version %d, %s shaders\n", info.Name, info.Version, info.Backend)
	if len(info.Parameters) == 0 {
		pterm.Println("No parameters")
		return nil, false
	}
	data := [][]string{{"Parameter", "Type", "Precision", "Array"}}
	for _, p := range info.Parameters {
		data = append(data, []string{p.Name, p.Type, p.Precision, fmt.Sprintf("%d", p.ArraySize)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// dumpOp prints the content of the selected entry, as text or as hex dump.
func dumpOp(intp *Intp, op *Op) (err error, stop bool) {
	var i int
	if i, err = intp.checkEntry(); err != nil {
		return
	}
	content := intp.blob.Content(i)
	format := op.arg
	if format == "" {
		format = "text"
		if !utf8.Valid(content) {
			format = "hex"
		}
	}
	switch format {
	case "hex":
		pterm.Println(hex.Dump(content))
	case "text":
		pterm.Println(string(content))
	default:
		err = fmt.Errorf("unknown dump format: %s", format)
	}
	return
}
