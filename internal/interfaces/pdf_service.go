package interfaces

// PDFService renders report markdown into PDF documents
type PDFService interface {
	// ConvertMarkdownToPDF converts markdown content to a PDF byte slice.
	// title is written to the document properties.
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
