package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()

	asm := filepath.Join(dir, "a.s")
	irf := filepath.Join(dir, "a.ir")

	err := writeOutputs(output{name: asm, data: []byte("asm\n")}, output{name: irf, data: []byte("ir\n")})
	require.NoError(t, err)

	b, err := os.ReadFile(asm)
	require.NoError(t, err)
	assert.Equal(t, "asm\n", string(b))

	b, err = os.ReadFile(irf)
	require.NoError(t, err)
	assert.Equal(t, "ir\n", string(b))
}

func TestWriteOutputsNothingOnFailure(t *testing.T) {
	dir := t.TempDir()

	asm := filepath.Join(dir, "a.s")
	irf := filepath.Join(dir, "missing", "a.ir")

	err := writeOutputs(output{name: asm, data: []byte("asm\n")}, output{name: irf, data: []byte("ir\n")})
	require.Error(t, err)

	assert.NoFileExists(t, asm)
	assert.NoFileExists(t, irf)
}
