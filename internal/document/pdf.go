package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/ledongthuc/pdf"
)

// ReadPDF extracts the text of a PDF statement, one line per visual row.
// Rows are rebuilt from positioned text runs; when that yields nothing the
// reader's whole-document plain text is used instead.
func ReadPDF(r io.ReaderAt, size int64, name string) (doc model.RawDocument, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to read PDF %s: %v", name, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("failed to open PDF %s: %w", name, err)
	}

	text := pdfRows(reader)
	if strings.TrimSpace(text) == "" {
		text = pdfPlainText(reader)
	}
	if strings.TrimSpace(text) == "" {
		return model.RawDocument{}, fmt.Errorf("%s: %w", name, common.ErrUnreadableDocument)
	}

	return model.RawDocument{
		Body: text,
		Name: name,
		Type: model.DocumentPDF,
	}, nil
}

func pdfRows(r *pdf.Reader) string {
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func pdfPlainText(r *pdf.Reader) string {
	plain, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return ""
	}
	return string(data)
}
