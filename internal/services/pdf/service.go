package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fontFamily  = "Arial"
	bodySize    = 10.0
	lineHeight  = 5.0
	pageWidth   = 190.0
	marginLeft  = 10.0
	footerLabel = "Generated by Ideas Matter"
)

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
	now    func() time.Time
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// ConvertMarkdownToPDF converts markdown content to a PDF byte slice
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting markdown to PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Ideas Matter", true)
	pdf.SetMargins(marginLeft, 12, marginLeft)
	pdf.SetAutoPageBreak(true, 15)

	generated := s.now().UTC().Format("2006-01-02 15:04 UTC")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(136, 136, 136)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s - %s - Page %d", footerLabel, generated, pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", bodySize)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}

	if err := ast.Walk(doc, renderer.walk); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render PDF")
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Str("title", title).Msg("PDF generated")
	return buf.Bytes(), nil
}

// pdfRenderer walks a goldmark AST and writes it with fpdf core fonts
type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	bold      bool
	italic    bool
	listLevel int
	ordered   []int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(fontFamily, style, bodySize)
}

func (r *pdfRenderer) write(s string) {
	r.pdf.Write(lineHeight, r.translate(s))
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		return r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineHeight + 1)
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", bodySize)
			r.write(string(node.Text(r.source)))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		r.list(node, entering)
	case *ast.ListItem:
		if entering {
			r.listItem()
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			y := r.pdf.GetY()
			r.pdf.SetDrawColor(229, 231, 235)
			r.pdf.Line(marginLeft, y, marginLeft+pageWidth, y)
			r.pdf.SetDrawColor(0, 0, 0)
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) heading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if !entering {
		r.pdf.Ln(lineHeight + 2)
		r.pdf.SetTextColor(0, 0, 0)
		r.updateFont()
		return ast.WalkContinue, nil
	}

	sizes := map[int]float64{1: 18, 2: 14, 3: 12}
	size, ok := sizes[n.Level]
	if !ok {
		size = 11
	}

	r.pdf.Ln(4)
	r.pdf.SetTextColor(45, 55, 72)
	r.pdf.SetFont(fontFamily, "B", size)
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) codeBlock(lines *text.Segments) {
	r.pdf.Ln(1)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 4.5, r.translate(strings.TrimRight(string(line.Value(r.source)), "\n")), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *pdfRenderer) list(n *ast.List, entering bool) {
	if entering {
		r.listLevel++
		start := 0
		if n.IsOrdered() {
			start = n.Start
		}
		r.ordered = append(r.ordered, start)
		return
	}

	r.listLevel--
	r.ordered = r.ordered[:len(r.ordered)-1]
	if r.listLevel == 0 {
		r.pdf.Ln(lineHeight + 1)
	}
}

func (r *pdfRenderer) listItem() {
	r.pdf.Ln(lineHeight)
	r.pdf.SetX(marginLeft + float64(r.listLevel)*5)

	depth := len(r.ordered) - 1
	if depth >= 0 && r.ordered[depth] > 0 {
		r.write(fmt.Sprintf("%d. ", r.ordered[depth]))
		r.ordered[depth]++
		return
	}
	r.write("- ")
}

func (r *pdfRenderer) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		var cells []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.translate(string(cell.Text(r.source))))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	cols := len(rows[0])
	widths := r.columnWidths(rows, cols)

	r.pdf.Ln(1)
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(fontFamily, "B", 9)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(fontFamily, "", 9)
		}

		rowLines := 1
		for j := 0; j < cols && j < len(row); j++ {
			if lines := len(r.pdf.SplitText(row[j], widths[j]-2)); lines > rowLines {
				rowLines = lines
			}
		}
		height := float64(rowLines)*4.5 + 2

		_, pageHeight := r.pdf.GetPageSize()
		_, _, _, bottom := r.pdf.GetMargins()
		if r.pdf.GetY()+height > pageHeight-bottom {
			r.pdf.AddPage()
		}

		x, y := r.pdf.GetXY()
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			style := "D"
			if i == 0 {
				style = "FD"
			}
			r.pdf.Rect(x, y, widths[j], height, style)
			r.pdf.SetXY(x+1, y+1)
			r.pdf.MultiCell(widths[j]-2, 4.5, cell, "", "L", false)
			x += widths[j]
		}
		r.pdf.SetXY(marginLeft, y+height)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(3)
}

// columnWidths sizes columns by content, capped at a third of the page,
// then scales the set to the printable width
func (r *pdfRenderer) columnWidths(rows [][]string, cols int) []float64 {
	widths := make([]float64, cols)
	r.pdf.SetFont(fontFamily, "B", 9)
	for _, row := range rows {
		for j := 0; j < cols && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(row[j]) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for j := range widths {
		if widths[j] < 15 {
			widths[j] = 15
		}
		if widths[j] > pageWidth/3 {
			widths[j] = pageWidth / 3
		}
		total += widths[j]
	}

	scale := pageWidth / total
	for j := range widths {
		widths[j] *= scale
	}
	return widths
}
