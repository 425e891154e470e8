package codec

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"prism-todo/domain"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) Next() domain.ID {
	s.n++
	return domain.NumericID(1700000000000 + s.n)
}

func TestExportShape(t *testing.T) {
	c := domain.Collection{{ID: domain.NumericID(1700000000000), Title: "Buy milk", Category: domain.ImportantUrgent}}

	data, err := Export(c)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "[\n  {\n    \"id\": 1700000000000,\n    \"title\": \"Buy milk\",\n    \"category\": \"important-&-urgent\"\n  }\n]"
	if string(data) != want {
		t.Fatalf("unexpected document:\n%s\nwant:\n%s", data, want)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	data, err := Export(nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [], got %s", data)
	}
}

func TestRoundTrip(t *testing.T) {
	ids := &seqIDs{}
	var c domain.Collection
	c = domain.Add(c, ids, "Pay rent", domain.ImportantUrgent)
	c = domain.Add(c, ids, "Read <book> & notes", domain.NotImportantNotUrgent)
	c = domain.Add(c, ids, "Call \"mum\"", domain.ImportantNotUrgent)
	c = domain.Delete(c, c[0].ID)
	c = domain.Add(c, ids, "  padded  ", domain.NotImportantUrgent)

	data, err := Export(c)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, c)
	}
}

func TestRoundTripStringIDs(t *testing.T) {
	var c domain.Collection
	c = domain.Add(c, domain.UUIDIDs{}, "one", domain.ImportantUrgent)
	c = domain.Add(c, domain.UUIDIDs{}, "two", domain.ImportantUrgent)

	data, err := Export(c)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestImportMalformedJSON(t *testing.T) {
	for _, in := range []string{"", "[", "{\"id\":", "not json"} {
		_, err := Import([]byte(in))
		if !errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("%q: expected malformed json error, got %v", in, err)
		}
		var ie *ImportError
		if !errors.As(err, &ie) || !strings.HasPrefix(ie.Message(), "Error importing file: ") {
			t.Fatalf("%q: unexpected message: %v", in, err)
		}
	}
}

func TestImportTooLargeSkipsParsing(t *testing.T) {
	data := bytes.Repeat([]byte("{"), MaxImportSize+1)

	_, err := Import(data)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large error, got %v", err)
	}
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Size != MaxImportSize+1 {
		t.Fatalf("unexpected error detail: %#v", err)
	}
	if ie.Message() != "File is too large. Please select a file smaller than 5 MB." {
		t.Fatalf("unexpected message: %q", ie.Message())
	}
}

func TestImportAtLimitIsParsed(t *testing.T) {
	data := make([]byte, MaxImportSize)
	data[0] = '['
	for i := 1; i < len(data)-1; i++ {
		data[i] = ' '
	}
	data[len(data)-1] = ']'

	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty collection, got %#v", got)
	}
}

func TestImportReaderStopsAfterLimit(t *testing.T) {
	r := bytes.NewReader(bytes.Repeat([]byte(" "), 2*MaxImportSize))
	_, err := ImportReader(r)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large error, got %v", err)
	}
	if remaining := r.Len(); remaining != 2*MaxImportSize-(MaxImportSize+1) {
		t.Fatalf("reader consumed past the limit, remaining %d", remaining)
	}
}

func TestCheckSize(t *testing.T) {
	if err := CheckSize(MaxImportSize); err != nil {
		t.Fatalf("expected limit to be accepted, got %v", err)
	}
	if err := CheckSize(MaxImportSize + 1); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestImportRejectsNonTaskDocuments(t *testing.T) {
	cases := map[string]string{
		"object":        `{}`,
		"numbers":       `[1,2,3]`,
		"null":          `null`,
		"missing title": `[{"id":1,"category":"important-&-urgent"}]`,
		"bool id":       `[{"id":true,"title":"x","category":"important-&-urgent"}]`,
	}
	for name, in := range cases {
		_, err := Import([]byte(in))
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected invalid document, got %v", name, err)
		}
	}
}

func TestImportReportsSchemaPaths(t *testing.T) {
	_, err := Import([]byte(`[{"id":1,"title":"ok","category":"important-&-urgent"},{"id":2,"title":7,"category":"important-&-urgent"}]`))
	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if len(ie.Problems) == 0 || !strings.HasPrefix(ie.Problems[0], "$[1].title") {
		t.Fatalf("unexpected problems: %#v", ie.Problems)
	}
}

func TestImportKeepsUnknownCategories(t *testing.T) {
	got, err := Import([]byte(`[{"id":"a","title":"x","category":"someday","notes":"extra"}]`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 1 || got[0].Category != "someday" || got[0].ID != domain.StringID("a") {
		t.Fatalf("unexpected collection: %#v", got)
	}
}

func TestPermissiveImport(t *testing.T) {
	d := Decoder{Permissive: true}

	got, err := d.Import([]byte(`[{"title":"no id"}]`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 1 || !got[0].ID.IsZero() || got[0].Title != "no id" {
		t.Fatalf("unexpected collection: %#v", got)
	}

	for _, in := range []string{`{}`, `[1,2,3]`, `"text"`} {
		if _, err := d.Import([]byte(in)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected invalid document, got %v", in, err)
		}
	}
}

func TestImportErrorKinds(t *testing.T) {
	err := &ImportError{Kind: MalformedJSON, Err: errors.New("boom")}
	if errors.Is(err, ErrTooLarge) || !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("kind matching broken")
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("expected wrapped error to be reachable")
	}
	if err.Message() != "Error importing file: boom" {
		t.Fatalf("unexpected message: %q", err.Message())
	}
	if MalformedJSON.String() != "malformed_json" {
		t.Fatalf("unexpected kind name: %s", MalformedJSON)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	cases := map[string]string{
		"":          "$",
		"/0/title":  "$[0].title",
		"/3":        "$[3]",
		"/0/a~1b~0": "$[0].a/b~",
	}
	for in, want := range cases {
		if got := jsonPointerToPath(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestUploadTooLarge(t *testing.T) {
	capped := fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: MaxUploadSize})
	ie := UploadTooLarge(capped)
	if ie == nil || !errors.Is(ie, ErrTooLarge) {
		t.Fatalf("expected too large error, got %v", ie)
	}
	if ie.Message() != "File is too large. Please select a file smaller than 5 MB." {
		t.Fatalf("unexpected message %q", ie.Message())
	}
	if !strings.Contains(ie.Error(), "exceeds") {
		t.Fatalf("unexpected error text %q", ie.Error())
	}
	if UploadTooLarge(errors.New("disk gone")) != nil {
		t.Fatalf("plain errors are not size errors")
	}
}
