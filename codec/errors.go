package codec

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ImportErrorKind classifies why an import was refused.
type ImportErrorKind int

const (
	TooLarge ImportErrorKind = iota + 1
	MalformedJSON
	InvalidDocument
)

func (k ImportErrorKind) String() string {
	switch k {
	case TooLarge:
		return "too_large"
	case MalformedJSON:
		return "malformed_json"
	case InvalidDocument:
		return "invalid_document"
	default:
		return "unknown"
	}
}

var (
	ErrTooLarge        = &ImportError{Kind: TooLarge}
	ErrMalformedJSON   = &ImportError{Kind: MalformedJSON}
	ErrInvalidDocument = &ImportError{Kind: InvalidDocument}
)

// ImportError is returned when a document cannot replace the current
// collection. The collection is never touched in that case.
type ImportError struct {
	Kind ImportErrorKind
	// Size is the byte count seen when Kind is TooLarge.
	Size int64
	// Problems lists schema violations as "path: message" when Kind is
	// InvalidDocument.
	Problems []string
	Err      error
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case TooLarge:
		if e.Size <= 0 {
			return fmt.Sprintf("import document exceeds the %d byte limit", MaxImportSize)
		}
		return fmt.Sprintf("import document is %d bytes, limit is %d", e.Size, MaxImportSize)
	case MalformedJSON:
		return fmt.Sprintf("import document is not valid JSON: %v", e.Err)
	case InvalidDocument:
		if len(e.Problems) > 0 {
			return "import document is not a task list: " + strings.Join(e.Problems, "; ")
		}
		return fmt.Sprintf("import document is not a task list: %v", e.Err)
	default:
		return "import failed"
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is matches any ImportError of the same kind, so errors.Is(err, ErrTooLarge)
// works regardless of the details carried.
func (e *ImportError) Is(target error) bool {
	var t *ImportError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Message returns the text shown to the user when an import is refused.
func (e *ImportError) Message() string {
	switch e.Kind {
	case TooLarge:
		return "File is too large. Please select a file smaller than 5 MB."
	case MalformedJSON:
		return "Error importing file: " + errText(e.Err)
	case InvalidDocument:
		if len(e.Problems) > 0 {
			return "Error importing file: " + strings.Join(e.Problems, "; ")
		}
		return "Error importing file: " + errText(e.Err)
	default:
		return "Error importing file."
	}
}

// UploadTooLarge returns a TooLarge ImportError when err comes from an
// http.MaxBytesReader cap on the request body, and nil otherwise.
func UploadTooLarge(err error) *ImportError {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &ImportError{Kind: TooLarge, Err: err}
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
