package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/assets"
	"github.com/Faultbox/assetdeck/internal/logger"
)

// Loader opens model sources through an asset manager.
type Loader struct {
	assets *assets.Manager
}

// New creates a loader resolving sources with m.
func New(m *assets.Manager) *Loader {
	return &Loader{assets: m}
}

// Load opens source on a new goroutine and calls done from that goroutine
// with the result. Callers hand the result back to their own loop.
func (l *Loader) Load(ctx context.Context, source string, done func(*Model, error)) {
	go func() {
		m, err := l.Open(ctx, source)
		done(m, err)
	}()
}

// Open resolves, reads and converts source synchronously.
func (l *Loader) Open(ctx context.Context, source string) (*Model, error) {
	start := time.Now()

	loc, err := l.assets.Resolve(source)
	if err != nil {
		return nil, fmt.Errorf("resolving model: %w", err)
	}

	var doc *gltf.Document
	var read ResourceReader
	if loc.Remote() {
		data, err := l.assets.Fetch(ctx, loc.URL)
		if err != nil {
			return nil, err
		}
		if doc, err = decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", loc.URL, err)
		}
		read = l.remoteReader(ctx, loc.URL)
	} else {
		if doc, err = gltf.Open(loc.Path); err != nil {
			return nil, fmt.Errorf("opening %s: %w", loc.Path, err)
		}
		read = localReader(filepath.Dir(loc.Path))
	}

	// A superseded load stops before the conversion work
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := ConvertWith(doc, read)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", source, err)
	}

	logger.Debug("model parsed",
		zap.String("source", source),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("animations", len(m.Clips)),
		zap.Duration("took", time.Since(start)))
	return m, nil
}

// localReader reads resources relative to dir.
func localReader(dir string) ResourceReader {
	return func(uri string) ([]byte, error) {
		name, err := url.PathUnescape(uri)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	}
}

// remoteReader fetches resources relative to the document URL.
func (l *Loader) remoteReader(ctx context.Context, docURL string) ResourceReader {
	return func(uri string) ([]byte, error) {
		base, err := url.Parse(docURL)
		if err != nil {
			return nil, err
		}
		ref, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		return l.assets.Fetch(ctx, base.ResolveReference(ref).String())
	}
}

// Decode reads a GLB or self-contained glTF stream and converts it.
func Decode(r io.Reader) (*Model, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	return Convert(doc)
}

func decode(r io.Reader) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
