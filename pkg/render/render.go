package render

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/errors"
)

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatDOT, FormatSVG}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	f := Format(name)
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", name, Formats)
	}
	return f, nil
}

// Options configures rendering.
type Options struct {
	// Title is shown above text output and as the DOT graph label.
	Title string
	// Radius of the spine circle in inches. Defaults to 2.
	Radius float64
}

// Render produces emb in format.
func Render(ctx context.Context, emb *book.Embedding, format Format, opts Options) ([]byte, error) {
	if emb == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}
	switch format {
	case FormatText, "":
		return []byte(Text(emb, opts)), nil
	case FormatJSON:
		return book.Marshal(emb)
	case FormatDOT:
		return []byte(ToDOT(emb, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(emb, opts))
	}
	return nil, fmt.Errorf("render: %w", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
}
