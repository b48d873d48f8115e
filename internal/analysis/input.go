package analysis

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/joshsymonds/policycheck/pkg/pathutil"
)

// MinTextLength is the fewest non-space characters accepted for analysis.
const MinTextLength = 10

// DefaultMaxFileSize caps policy uploads at 10 MiB.
const DefaultMaxFileSize int64 = 10 << 20

// DefaultAllowedExtensions lists the accepted policy document types. Every
// type is read as raw UTF-8 text.
var DefaultAllowedExtensions = []string{".txt", ".pdf", ".doc", ".docx"}

// Limits bounds what is accepted as a policy document.
type Limits struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileSize       int64    `yaml:"max_file_size"`
	MinTextLength     int      `yaml:"min_text_length"`
}

// DefaultLimits returns the standard document limits.
func DefaultLimits() Limits {
	return Limits{
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		MaxFileSize:       DefaultMaxFileSize,
		MinTextLength:     MinTextLength,
	}
}

func (l Limits) minTextLength() int {
	if l.MinTextLength <= 0 {
		return MinTextLength
	}
	return l.MinTextLength
}

// ValidateText rejects text with fewer than minLen non-space characters.
func ValidateText(text string, minLen int) error {
	if minLen <= 0 {
		return nil
	}
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
			if n >= minLen {
				return nil
			}
		}
	}
	if n == 0 {
		return newError(KindInvalidInput, "policy text is empty", "", nil)
	}
	return newError(KindInvalidInput, "policy text is too short",
		fmt.Sprintf("found %d non-space characters, need at least %d", n, minLen), nil)
}

// ReadPolicy reads a policy document from path, enforcing the size and
// extension limits. Invalid UTF-8 sequences are replaced.
func ReadPolicy(path string, limits Limits) (string, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return "", newError(KindInvalidInput, "invalid policy path", path, err)
	}
	if err := pathutil.ValidateExtension(cleanPath, limits.AllowedExtensions); err != nil {
		return "", newError(KindInvalidInput, "unsupported policy file", path, err)
	}

	f, err := os.Open(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return "", newError(KindInvalidInput, "opening policy file", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return "", newError(KindInternal, "reading policy file", path, err)
	}
	if info.IsDir() {
		return "", newError(KindInvalidInput, "policy path is a directory", path, nil)
	}
	if limits.MaxFileSize > 0 && info.Size() > limits.MaxFileSize {
		return "", newError(KindInvalidInput, "policy file too large",
			fmt.Sprintf("%d bytes exceeds limit of %d bytes", info.Size(), limits.MaxFileSize), nil)
	}

	var r io.Reader = f
	if limits.MaxFileSize > 0 {
		r = io.LimitReader(f, limits.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", newError(KindInternal, "reading policy file", path, err)
	}
	if limits.MaxFileSize > 0 && int64(len(data)) > limits.MaxFileSize {
		return "", newError(KindInvalidInput, "policy file too large",
			fmt.Sprintf("exceeds limit of %d bytes", limits.MaxFileSize), nil)
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}
