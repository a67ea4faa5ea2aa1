package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/media"
)

// Invalidator is implemented by listers that cache results.
type Invalidator interface {
	Invalidate(ctx context.Context, prefix string)
}

// Gallery builds the image list of a listing from the bucket and the record.
type Gallery struct {
	lister   Lister
	resolver *media.Resolver
	log      *zap.Logger
}

// NewGallery returns a Gallery listing through lister and resolving under resolver.
func NewGallery(lister Lister, resolver *media.Resolver, log *zap.Logger) *Gallery {
	return &Gallery{lister: lister, resolver: resolver, log: log}
}

// Images returns public URLs for the objects under prefix followed by the
// record's own images, without duplicates. A listing failure only drops the
// bucket-sourced part.
func (g *Gallery) Images(ctx context.Context, prefix string, record any) []string {
	var bucket []string
	if prefix != "" {
		keys, err := g.lister.List(ctx, prefix)
		if err != nil {
			g.log.Warn("gallery: list bucket failed", zap.String("prefix", prefix), zap.Error(err))
		} else {
			bucket = g.resolver.ResolveAll(keys)
		}
	}
	return media.Merge(bucket, g.RecordImages(record))
}

// RecordImages resolves only the images stored on the record.
func (g *Gallery) RecordImages(record any) []string {
	return g.resolver.ResolveAll(media.Candidates(record))
}

// Cover returns the first resolvable record image.
func (g *Gallery) Cover(record any) (string, bool) {
	imgs := g.RecordImages(record)
	if len(imgs) == 0 {
		return "", false
	}
	return imgs[0], true
}

// Resolve resolves a single key.
func (g *Gallery) Resolve(key string) (string, bool) {
	return g.resolver.Resolve(key)
}

// Invalidate drops cached listings for prefix when the lister caches.
func (g *Gallery) Invalidate(ctx context.Context, prefix string) {
	if inv, ok := g.lister.(Invalidator); ok {
		inv.Invalidate(ctx, prefix)
	}
}
