// Package codec converts task collections to and from the JSON document
// used for export and import.
package codec

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"prism-todo/domain"
)

// MaxImportSize is the largest document Import accepts.
const MaxImportSize = 5 * 1024 * 1024 // 5 MiB

// MaxUploadSize caps request bodies carrying an import document. It leaves
// room for multipart framing around a MaxImportSize file.
const MaxUploadSize = 8 << 20 // 8 MiB

var api = sonic.Config{
	CopyString:     true,
	ValidateString: true,
}.Froze()

// Export renders c as a pretty-printed JSON array of {id, title, category}
// objects. An empty collection renders as [].
func Export(c domain.Collection) ([]byte, error) {
	if c == nil {
		c = domain.Collection{}
	}
	data, err := api.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// CheckSize refuses documents larger than MaxImportSize. Callers that know
// the size before reading (file stat, upload header) call it first.
func CheckSize(n int64) error {
	if n > MaxImportSize {
		return &ImportError{Kind: TooLarge, Size: n}
	}
	return nil
}

// Decoder parses import documents.
type Decoder struct {
	// Permissive skips schema validation. The document must still be a JSON
	// array whose elements decode into tasks.
	Permissive bool
}

// Import parses data into a collection. It never returns a partial
// collection: on error the caller keeps its current state.
func Import(data []byte) (domain.Collection, error) {
	return Decoder{}.Import(data)
}

// ImportReader reads at most MaxImportSize+1 bytes from r and imports them.
func ImportReader(r io.Reader) (domain.Collection, error) {
	return Decoder{}.ImportReader(r)
}

// Import parses data into a collection, validating it against the document
// schema unless d is permissive.
func (d Decoder) Import(data []byte) (domain.Collection, error) {
	if err := CheckSize(int64(len(data))); err != nil {
		return nil, err
	}

	var doc any
	if err := api.Unmarshal(data, &doc); err != nil {
		return nil, &ImportError{Kind: MalformedJSON, Err: err}
	}

	if d.Permissive {
		if _, ok := doc.([]any); !ok {
			return nil, &ImportError{Kind: InvalidDocument, Problems: []string{"$: expected array"}}
		}
	} else if problems := validateDocument(doc); len(problems) > 0 {
		return nil, &ImportError{Kind: InvalidDocument, Problems: problems}
	}

	tasks := domain.Collection{}
	if err := api.Unmarshal(data, &tasks); err != nil {
		return nil, &ImportError{Kind: InvalidDocument, Err: err}
	}
	return tasks, nil
}

// ImportReader reads at most MaxImportSize+1 bytes from r and imports them.
func (d Decoder) ImportReader(r io.Reader) (domain.Collection, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read import document: %w", err)
	}
	return d.Import(data)
}
