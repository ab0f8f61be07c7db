// Package upload validates invoice files before they are accepted:
// filename sanitization, extension whitelist, size limit, magic bytes
// and a cheap NF-e structure sniff.
package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFileSize is the advertised upload limit (10 MB).
const MaxFileSize = 10 << 20

var allowedExtensions = map[string]bool{"xml": true}

var (
	unsafeCharRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	xmlTagRe     = regexp.MustCompile(`<\w+[^>]*>`)
)

// FileInfo describes a file that passed every validation.
type FileInfo struct {
	Filename  string
	Extension string
	Size      int
}

// SanitizeFilename strips any path component and replaces characters outside
// [a-zA-Z0-9._-], preventing traversal through user-supplied names.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	return unsafeCharRe.ReplaceAllString(name, "_")
}

func validateExtension(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("extensão '%s' não permitida. Extensões permitidas: xml", ext)
	}
	return ext, nil
}

func validateSize(content []byte, maxSize int) error {
	if len(content) == 0 {
		return fmt.Errorf("arquivo vazio")
	}
	if len(content) > maxSize {
		return fmt.Errorf("arquivo muito grande: %.2fMB. Tamanho máximo: %.2fMB",
			float64(len(content))/(1024*1024), float64(maxSize)/(1024*1024))
	}
	return nil
}

func validateMagic(content []byte) error {
	trimmed := bytes.TrimLeft(content, " \t\r\n\xef\xbb\xbf")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<")) {
		return nil
	}
	return fmt.Errorf("arquivo não corresponde ao formato esperado para .xml")
}

func validateXMLStructure(content []byte) error {
	s := string(content)
	if !xmlTagRe.MatchString(s) {
		return fmt.Errorf("arquivo não contém estrutura XML válida")
	}
	lower := strings.ToLower(s)
	if !strings.Contains(lower, "nfe") && !strings.Contains(lower, "nota") {
		return fmt.Errorf("arquivo XML não parece ser uma NF-e (Nota Fiscal Eletrônica)")
	}
	return nil
}

// Validate runs the full security validation for an uploaded file.
func Validate(filename string, content []byte, maxSize int) (*FileInfo, error) {
	safe := SanitizeFilename(filename)
	ext, err := validateExtension(safe)
	if err != nil {
		return nil, err
	}
	if err := validateSize(content, maxSize); err != nil {
		return nil, err
	}
	if err := validateMagic(content); err != nil {
		return nil, err
	}
	if err := validateXMLStructure(content); err != nil {
		return nil, err
	}
	return &FileInfo{Filename: safe, Extension: ext, Size: len(content)}, nil
}
