package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "key", "keys", "variant":
		pterm.Info.Println("Variant keys")
		pterm.Println(`
	Every shader in a blob is addressed by a 32-bit variant key:
	+------------------+---------+---------+
	| shading model 16 | stage 8 | flags 8 |
	+------------------+---------+---------+
	Select a shader by key with 'key:0x00020103'.
	`)
	case "blob", "layout":
		pterm.Info.Println("Blob layout")
		pterm.Println(`
	An indexed blob consists of
	+-----------------+------------+-------+---------------------------+
	| reflection size | reflection | count | count * (key,offset,size) |
	+-----------------+------------+-------+---------------------------+
	followed by the shader contents in index order.
	All numbers are little-endian 32-bit. Offsets count from the start of the blob.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	list             list all entries of the index
	entry:<n>        select entry n
	key:<0xkey>      select the entry with a variant key
	dump[:hex|text]  print the content of the selected entry
	reflect[:raw]    print the reflection metadata
	help[:key|blob]  print help on a topic
	quit             leave
	`)
	}
}
