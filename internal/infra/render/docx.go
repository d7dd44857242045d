package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// Minimal WordprocessingML package: content types, package rels, and the
// document part itself.
const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docxDocumentFooter = `</w:body></w:document>`
)

// UsersDOCX renders the user roster as a Word document, one heading followed
// by a line per user.
func UsersDOCX(users []domain.User) ([]byte, error) {
	var body strings.Builder
	body.WriteString(docxDocumentHeader)
	body.WriteString(paragraph("User Roster", true))

	for _, user := range users {
		line := fmt.Sprintf("%s | active: %t | roles: %s | created: %s",
			user.Email,
			user.Active,
			strings.Join(user.Roles, ", "),
			user.CreatedAt.UTC().Format(time.DateTime),
		)
		body.WriteString(paragraph(line, false))
	}
	body.WriteString(docxDocumentFooter)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", body.String()},
	}

	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("render: create docx part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("render: write docx part %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render: close docx package: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraph(text string, bold bool) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	props := ""
	if bold {
		props = `<w:rPr><w:b/></w:rPr>`
	}
	return fmt.Sprintf(`<w:p><w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p>`, props, escaped.String())
}
