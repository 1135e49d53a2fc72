package main

import (
	"io"
	"testing"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--file", "data/price.xlsx", "--mode", "UPSERT", "--resume", "--tag", "bojet", "--category", "Прочее"}, 500, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "data/price.xlsx", opts.file)
	assert.Equal(t, importer.ModeUpsert, opts.mode)
	assert.Equal(t, 500, opts.batch)
	assert.True(t, opts.resume)
	assert.Equal(t, "bojet", opts.tag)
	assert.Equal(t, "Прочее", opts.category)

	opts, err = parseFlags([]string{"-file=a.csv", "-batch=50"}, 500, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, importer.ModeInsert, opts.mode)
	assert.Equal(t, 50, opts.batch)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", nil},
		{"unsupported extension", []string{"--file", "price.pdf"}},
		{"unknown mode", []string{"--file", "a.csv", "--mode", "merge"}},
		{"zero batch", []string{"--file", "a.csv", "--batch", "0"}},
		{"unknown flag", []string{"--file", "a.csv", "--dry"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, 500, io.Discard)
			assert.Error(t, err)
		})
	}
}
