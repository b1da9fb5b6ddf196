package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidEPUB is returned when the container or package document is missing.
var ErrInvalidEPUB = errors.New("document: invalid epub")

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Title    []string `xml:"metadata>title"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// loadEPUB flattens the spine documents of an EPUB into one Document.
// Each spine document with a heading contributes a "# heading" line so the
// markdown strategy can pick it up; paragraphs are separated by blank lines.
func loadEPUB(p string) (*Document, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer func() { _ = zr.Close() }()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeXML(files, "META-INF/container.xml", &container); err != nil {
		return nil, err
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return nil, fmt.Errorf("%w: no rootfile", ErrInvalidEPUB)
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeXML(files, opfPath, &pkg); err != nil {
		return nil, err
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	baseDir := path.Dir(opfPath)
	var sections []string
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		f, ok := files[path.Join(baseDir, href)]
		if !ok {
			continue
		}
		section, err := extractSection(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", href, err)
		}
		if section != "" {
			sections = append(sections, section)
		}
	}

	title := stem(p)
	if len(pkg.Title) > 0 && strings.TrimSpace(pkg.Title[0]) != "" {
		title = strings.TrimSpace(pkg.Title[0])
	}
	if len(sections) == 0 {
		sections = []string{title}
	}

	return New(title, strings.Join(sections, "\n\n\n")), nil
}

func decodeXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidEPUB, name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidEPUB, name, err)
	}
	return nil
}

// extractSection returns the heading line plus paragraph text of one XHTML document.
func extractSection(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(rc, 32<<20))
	if err != nil {
		return "", err
	}

	var parts []string
	if h := strings.TrimSpace(doc.Find("h1, h2").First().Text()); h != "" {
		parts = append(parts, "# "+collapseSpace(h))
	}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
