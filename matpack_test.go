package matpack

import (
	"testing"

	"github.com/npillmayer/matpack/blob"
	"github.com/npillmayer/matpack/header"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/matpack/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobAndHeader(t *testing.T) {
	pkg, err := shader.NewPackageBuilder("glass").SetVersion(2).
		AddShader(shader.BackendVulkan, shader.Descriptor{Model: variant.ModelDesktop, Stage: variant.StageFragment}, []byte{3, 2, 35, 7}).
		Build()
	require.NoError(t, err)

	r, err := FromBinary(pkg)
	require.NoError(t, err)
	name, version := MaterialName(r)
	assert.Equal(t, "glass", name)
	assert.Equal(t, uint32(2), version)

	data, err := BlobFor(pkg, shader.BackendVulkan)
	require.NoError(t, err)
	b, err := blob.Decode(data)
	require.NoError(t, err)
	require.NoError(t, b.Verify())
	info, err := Reflect(data)
	require.NoError(t, err)
	assert.Equal(t, "vulkan", info.Backend)
	require.Len(t, info.Shaders, 1)
	assert.Equal(t, 4, info.Shaders[0].Length)

	_, err = BlobFor(pkg, shader.BackendOpenGL)
	assert.Error(t, err, "package has no OpenGL shaders")

	text, err := HeaderFor(pkg)
	require.NoError(t, err)
	back, err := header.Decode(text)
	require.NoError(t, err)
	assert.Equal(t, pkg, back)
}
