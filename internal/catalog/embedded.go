package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"io"
)

//go:embed data/controls.json
var embeddedControls []byte

// Embedded decodes the built-in catalog. It panics only if the compiled-in
// document is invalid, which the package tests rule out.
func Embedded() *Catalog {
	c, err := Decode(embeddedControls)
	if err != nil {
		panic("catalog: embedded controls are invalid: " + err.Error())
	}
	return c
}

type embeddedSource struct{}

// EmbeddedSource returns a Source serving the built-in catalog.
func EmbeddedSource() Source {
	return embeddedSource{}
}

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(embeddedControls)), nil
}
