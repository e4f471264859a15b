package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/gen2brain/go-fitz"
	"github.com/go-resty/resty/v2"
)

// ExtractionError wraps any failure to turn a resume URL into text. Callers
// treat it as non-fatal and proceed with empty resume text.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract resume text from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type ExtractServiceInterface interface {
	ExtractText(ctx context.Context, fileURL string) (string, error)
}

// ExtractService fetches a resume by URL and converts it to plain text,
// dispatching on the declared content type: PDF and DOCX are parsed, images
// go through tesseract OCR, anything else yields an empty string.
type ExtractService struct {
	client *resty.Client
}

const extractTimeout = 30 * time.Second

func NewExtractService() *ExtractService {
	return &ExtractService{
		client: resty.New().SetTimeout(extractTimeout),
	}
}

func (s *ExtractService) ExtractText(ctx context.Context, fileURL string) (string, error) {
	if fileURL == "" {
		return "", nil
	}

	resp, err := s.client.R().SetContext(ctx).Get(fileURL)
	if err != nil {
		return "", &ExtractionError{URL: fileURL, Err: err}
	}
	if resp.IsError() {
		return "", &ExtractionError{URL: fileURL, Err: fmt.Errorf("fetch failed with status %d", resp.StatusCode())}
	}

	contentType := resp.Header().Get("Content-Type")
	body := resp.Body()
	lowerURL := strings.ToLower(fileURL)

	switch {
	case strings.Contains(contentType, "application/vnd.openxmlformats-officedocument.wordprocessingml.document") ||
		strings.HasSuffix(lowerURL, ".docx"):
		text, err := extractDOCX(body)
		if err != nil {
			return "", &ExtractionError{URL: fileURL, Err: err}
		}
		return text, nil

	case strings.Contains(contentType, "application/pdf") || strings.HasSuffix(lowerURL, ".pdf"):
		text, err := extractPDF(body)
		if err != nil {
			return "", &ExtractionError{URL: fileURL, Err: err}
		}
		return text, nil

	case strings.HasPrefix(contentType, "image/") ||
		strings.HasSuffix(lowerURL, ".png") || strings.HasSuffix(lowerURL, ".jpg") || strings.HasSuffix(lowerURL, ".jpeg"):
		text, err := extractImageOCR(body)
		if err != nil {
			return "", &ExtractionError{URL: fileURL, Err: err}
		}
		return text, nil
	}

	// Unsupported types are not an error; the ranking falls back to an
	// empty resume.
	return "", nil
}

func extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer doc.Close()

	var full bytes.Buffer
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		if t := strings.TrimSpace(pageText); t != "" {
			full.WriteString(t)
			full.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(full.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}

	var full bytes.Buffer
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph, *docx.Table:
			fmt.Fprintln(&full, it)
		}
	}
	return strings.TrimSpace(full.String()), nil
}

// extractImageOCR shells out to tesseract on a temp copy of the image.
func extractImageOCR(data []byte) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "resume-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	cmd := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func checkTesseract() error {
	cmd := exec.Command("tesseract", "-v")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w, output: %s", err, string(out))
	}
	return nil
}
