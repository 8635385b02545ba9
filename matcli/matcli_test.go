package main

import (
	"strings"
	"testing"

	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/matpack/variant"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedIntp(t *testing.T) *Intp {
	pkg, err := shader.NewPackageBuilder("bricks").
		AddShader(shader.BackendOpenGL, shader.Descriptor{Model: variant.ModelMobile, Stage: variant.StageVertex}, []byte("vertex")).
		AddShader(shader.BackendOpenGL, shader.Descriptor{Model: variant.ModelMobile, Stage: variant.StageFragment, Flags: 1}, []byte("fragment")).
		Build()
	require.NoError(t, err)
	data, err := compileBlob(pkg, shader.BackendOpenGL)
	require.NoError(t, err)
	intp := &Intp{selected: -1}
	require.NoError(t, intp.setBlob("bricks", data))
	return intp
}

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.cli")
	defer teardown()
	//
	intp := &Intp{selected: -1}
	cmd, err := intp.parseCommand("entry:1 dump:hex bogus")
	require.NoError(t, err)
	require.Len(t, cmd.ops, 3)
	assert.Equal(t, ENTRY, cmd.ops[0].code)
	assert.Equal(t, "1", cmd.ops[0].arg)
	assert.Equal(t, DUMP, cmd.ops[1].code)
	assert.Equal(t, "hex", cmd.ops[1].arg)
	assert.Equal(t, HELP, cmd.ops[2].code, "unknown ops turn into help")

	_, err = intp.parseCommand("   ")
	assert.Error(t, err)
}

func TestParseCommandFreshEachLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.cli")
	defer teardown()
	//
	intp := &Intp{selected: -1}
	first, err := intp.parseCommand("entry:1 dump:hex list")
	require.NoError(t, err)
	second, err := intp.parseCommand("key:0x00010200 quit entry:0")
	require.NoError(t, err)
	require.Len(t, first.ops, 3, "earlier command must not change when a new line is parsed")
	assert.Equal(t, ENTRY, first.ops[0].code)
	assert.Equal(t, "1", first.ops[0].arg)
	assert.Equal(t, LIST, first.ops[2].code)
	require.Len(t, second.ops, 2, "ops after quit are dropped")
	assert.Equal(t, KEY, second.ops[0].code)
	assert.Equal(t, QUIT, second.ops[1].code)

	many := strings.TrimSpace(strings.Repeat("list ", 40))
	cmd, err := intp.parseCommand(many)
	require.NoError(t, err)
	assert.Len(t, cmd.ops, 40)
}

func TestSelectEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.cli")
	defer teardown()
	//
	intp := loadedIntp(t)
	_, err := intp.checkEntry()
	assert.ErrorIs(t, err, errNoEntry)

	err, _ = entryOp(intp, &Op{code: ENTRY, arg: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, intp.selected)
	assert.Equal(t, "fragment", string(intp.blob.Content(intp.selected)))

	key := variant.Encode(variant.ModelMobile, variant.StageVertex, 0)
	err, _ = keyOp(intp, &Op{code: KEY, arg: key.String()})
	require.NoError(t, err)
	assert.Equal(t, 0, intp.selected)

	err, _ = entryOp(intp, &Op{code: ENTRY, arg: "2"})
	assert.Error(t, err)
	err, _ = keyOp(intp, &Op{code: KEY, arg: "0xffffffff"})
	assert.Error(t, err)
	err, _ = keyOp(intp, &Op{code: KEY, arg: "zz"})
	assert.Error(t, err)
}

func TestExecuteStopsAtQuit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.cli")
	defer teardown()
	//
	intp := loadedIntp(t)
	cmd, err := intp.parseCommand("entry:0 quit entry:1")
	require.NoError(t, err)
	err, stop := intp.execute(cmd)
	assert.NoError(t, err)
	assert.True(t, stop)
	assert.Equal(t, 0, intp.selected)
}

func TestEntryTable(t *testing.T) {
	intp := loadedIntp(t)
	intp.selected = 1
	rows := entryTable(intp)
	require.Len(t, rows, 3)
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "*1", rows[2][0])
	assert.Equal(t, "mobile/fragment/0x01", rows[2][2])
}

func TestLoadRequiresInput(t *testing.T) {
	intp := &Intp{selected: -1}
	assert.Error(t, intp.load("", "", "opengl"))
	assert.Error(t, intp.load("a.blob", "a.pkg", "opengl"))
}
