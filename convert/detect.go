package convert

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"
)

type sourceKind int

const (
	kindUnknown sourceKind = iota
	kindPage
	kindDocument
)

const (
	pageExt     = ".jay-html"
	documentExt = ".json"
)

func (k sourceKind) String() string {
	switch k {
	case kindPage:
		return "jay-html"
	case kindDocument:
		return "json"
	default:
		return "unknown"
	}
}

// ext returns file extension of the kind.
func (k sourceKind) ext() string {
	switch k {
	case kindPage:
		return pageExt
	case kindDocument:
		return documentExt
	default:
		// this should never happen
		panic("unsupported source kind requested")
	}
}

// sniffLen is enough for filetype to recognize anything it knows about.
const sniffLen = 262

// detectKind looks at name and first bytes of the content. Binary content
// recognized by magic numbers is never accepted whatever the extension.
func detectKind(name string, head []byte) sourceKind {
	var kind sourceKind
	switch lower := strings.ToLower(name); {
	case strings.HasSuffix(lower, pageExt):
		kind = kindPage
	case strings.HasSuffix(lower, documentExt):
		kind = kindDocument
	default:
		return kindUnknown
	}

	if t, err := filetype.Match(head); err == nil && t != filetype.Unknown {
		return kindUnknown
	}

	text := bytes.TrimLeft(bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF}), " \t\r\n")
	switch {
	case len(text) == 0:
		return kindUnknown
	case kind == kindDocument && text[0] != '{':
		return kindUnknown
	case kind == kindPage && text[0] != '<':
		return kindUnknown
	}
	return kind
}

// detectSource checks file on disk, it is only opened when name has one of
// known extensions.
func detectSource(path string) (sourceKind, error) {
	switch strings.ToLower(sourceExt(path)) {
	case pageExt, documentExt:
	default:
		return kindUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return kindUnknown, err
	}
	defer f.Close()

	head, err := sniff(bufio.NewReaderSize(f, sniffLen))
	if err != nil {
		return kindUnknown, err
	}
	return detectKind(path, head), nil
}

// sniff returns first bytes of the stream without consuming them.
func sniff(r *bufio.Reader) ([]byte, error) {
	head, err := r.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return head, nil
}
