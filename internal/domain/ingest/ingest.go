// Package ingest routes an uploaded statement to the parser for its format
// and returns the canonical transaction sequence. Format selection is by
// file extension; unrecognized extensions are treated as delimited text.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/extrato-dev/extrato/internal/domain/ingest/ofx"
	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/ingest/pdfext"
	"github.com/extrato-dev/extrato/internal/domain/ingest/qif"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// ErrUnparsable is the format-fatal condition: the file could not be read in
// its declared format after every fallback. Callers should distinguish it
// from a successful parse that found no transactions.
var ErrUnparsable = errors.New("could not parse file")

// Format identifies the parser a file was routed to.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatExcel     Format = "excel"
	FormatPDF       Format = "pdf"
	FormatOFX       Format = "ofx"
	FormatQIF       Format = "qif"
)

// DetectFormat maps a file name to its parser by extension. Unrecognized
// extensions fall back to the delimited-text normalizer.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".ofx", ".qfx":
		return FormatOFX
	case ".qif":
		return FormatQIF
	case ".xlsx", ".xls":
		return FormatExcel
	default:
		return FormatDelimited
	}
}

// Service owns the per-format parsers. It holds no state between requests;
// concurrent uploads are naturally isolated.
type Service struct {
	parser *parser.Parser
	pdf    *pdfext.Extractor
	logger *slog.Logger
}

// NewService wires a service around the delimited normalizer configuration
// and the PDF layout collaborator.
func NewService(cfg parser.Config, layout pdfext.Layout, logger *slog.Logger) *Service {
	p := parser.New(cfg)
	return &Service{
		parser: p,
		pdf:    pdfext.New(layout, p, logger),
		logger: logger,
	}
}

// Parse normalizes one uploaded file. The returned sequence may be empty for
// formats where "no data found" is a legitimate terminal state.
func (s *Service) Parse(ctx context.Context, filename string, data []byte) (transaction.Sequence, error) {
	format := DetectFormat(filename)

	ctx, span := otel.Tracer("ingest").Start(ctx, "ingest.Parse",
		trace.WithAttributes(
			attribute.String("file.format", string(format)),
			attribute.Int("file.bytes", len(data)),
		),
	)
	defer span.End()

	seq, err := s.parseAs(ctx, format, data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warn("statement parse failed",
			slog.String("format", string(format)),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	s.logger.Info("statement parsed",
		slog.String("format", string(format)),
		slog.Int("transactions", len(seq)),
	)
	return seq, nil
}

func (s *Service) parseAs(ctx context.Context, format Format, data []byte) (transaction.Sequence, error) {
	switch format {
	case FormatPDF:
		return s.pdf.Parse(ctx, data)
	case FormatOFX:
		return ofx.Parse(ctx, data)
	case FormatQIF:
		return qif.Parse(bytes.NewReader(data))
	case FormatExcel:
		return s.parser.ParseExcel(data)
	default:
		return s.parser.Parse(data)
	}
}
