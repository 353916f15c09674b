package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// FieldDelimiter separates the fields of a catalog record.
const FieldDelimiter = "^"

const (
	fieldCount    = 3
	maxLineLength = 1 << 20
)

// Loader reads catalogs from files and object storage.
type Loader struct {
	logger  *zap.Logger
	objects ObjectGetter
}

// Option configures a Loader.
type Option func(*Loader)

// WithObjectGetter enables s3:// sources.
func WithObjectGetter(objects ObjectGetter) Option {
	return func(l *Loader) {
		l.objects = objects
	}
}

// New constructs a Loader. A nil logger discards output.
func New(logger *zap.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a catalog from a local path or an s3://bucket/key URI.
func (l *Loader) Load(ctx context.Context, source string) (food.Catalog, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidSource)
	}
	if strings.HasPrefix(source, s3Scheme) {
		bucket, key, err := parseS3URI(source)
		if err != nil {
			return nil, err
		}
		return l.LoadObject(ctx, bucket, key)
	}
	return l.LoadFile(source)
}

// LoadFile reads a catalog from a local file.
func (l *Loader) LoadFile(path string) (food.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	l.logger.Info("catalog loaded", zap.String("path", path), zap.Int("items", len(catalog)))
	return catalog, nil
}

// Parse decodes catalog records from r. The first line is a header. Records
// that are malformed or describe an invalid item are skipped with a warning;
// only read failures are returned as errors.
func (l *Loader) Parse(r io.Reader) (food.Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	catalog := food.Catalog{}
	lineNumber := 0
	skipped := 0
	for scanner.Scan() {
		lineNumber++
		if lineNumber == 1 {
			continue
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		item, err := parseRecord(line)
		if err != nil {
			skipped++
			l.logger.Warn("skipping catalog record",
				zap.Int("line", lineNumber),
				zap.String("record", line),
				zap.Error(err),
			)
			continue
		}
		catalog = append(catalog, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan line %d: %w", lineNumber+1, err)
	}

	if skipped > 0 {
		l.logger.Info("catalog records skipped", zap.Int("skipped", skipped), zap.Int("kept", len(catalog)))
	}
	return catalog, nil
}

func parseRecord(line string) (food.Item, error) {
	fields := strings.Split(line, FieldDelimiter)
	if len(fields) != fieldCount {
		return food.Item{}, fmt.Errorf("want %d fields, got %d", fieldCount, len(fields))
	}

	calories, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return food.Item{}, fmt.Errorf("parse calories: %w", err)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return food.Item{}, fmt.Errorf("parse weight: %w", err)
	}

	return food.NewItem(fields[0], calories, weight)
}
