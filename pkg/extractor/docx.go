package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads the OOXML main document part and concatenates the text of
// non-empty paragraphs. Whitespace-only paragraphs are dropped entirely. The
// format carries no page information, so the page count is fixed at 1.
func extractDOCX(data []byte, filename string) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &CorruptedFileError{
			Filename: filename,
			Reason:   fmt.Sprintf("failed to parse DOCX: %v", err),
		}
	}

	var docPart *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return nil, &CorruptedFileError{
			Filename: filename,
			Reason:   "failed to parse DOCX: missing word/document.xml",
		}
	}

	rc, err := docPart.Open()
	if err != nil {
		return nil, &CorruptedFileError{
			Filename: filename,
			Reason:   fmt.Sprintf("failed to parse DOCX: %v", err),
		}
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return nil, &CorruptedFileError{
			Filename: filename,
			Reason:   fmt.Sprintf("failed to parse DOCX: %v", err),
		}
	}

	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}

	return &Result{Text: strings.Join(kept, "\n\n"), PageCount: 1}, nil
}

// readParagraphs streams the WordprocessingML token stream, collecting the
// character data of w:t runs per w:p element. Tabs and breaks inside a run
// become "\t" and "\n".
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
