// Package document decodes statement files into pipeline input.
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

// Decoded is one input file ready for the pipeline. Statement is set only for
// structured downloads (OFX/QFX); every other format carries text in Doc.
type Decoded struct {
	Statement *Statement
	Doc       model.RawDocument
}

// Loader dispatches files to the decoder for their extension.
type Loader struct {
	ofx *OFXParser
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{ofx: NewOFXParser()}
}

// Supported reports whether path has an extension the loader can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".eml", ".ofx", ".qfx", ".txt":
		return true
	default:
		return false
	}
}

// Load decodes the file at path.
func (l *Loader) Load(ctx context.Context, path string) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}
	if !Supported(path) {
		return Decoded{}, fmt.Errorf("%s: %w", path, common.ErrUnsupportedDocument)
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		info, err := f.Stat()
		if err != nil {
			return Decoded{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		doc, err := ReadPDF(f, info.Size(), name)
		return Decoded{Doc: doc}, err
	case ".eml":
		doc, err := ParseEmail(f, name)
		return Decoded{Doc: doc}, err
	case ".ofx", ".qfx":
		st, err := l.ofx.Parse(ctx, f)
		if err != nil {
			return Decoded{}, fmt.Errorf("%s: %w", path, err)
		}
		return Decoded{
			Doc:       model.RawDocument{Name: name, Type: model.DocumentOFX},
			Statement: st,
		}, nil
	default:
		doc, err := ReadText(f, name)
		return Decoded{Doc: doc}, err
	}
}

// ReadText wraps plain statement text.
func ReadText(r io.Reader, name string) (model.RawDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return model.RawDocument{
		Body: string(data),
		Name: name,
		Type: model.DocumentText,
	}, nil
}
