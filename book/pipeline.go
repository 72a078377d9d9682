package book

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"epubr/epub"
	"epubr/storage"
)

// restore resolves structure from saved record. Incomplete or foreign
// records are dropped together with saved settings and book is loaded
// from scratch.
func (s *Session) restore(ctx context.Context) error {
	s.mu.Lock()
	base, version := s.bookURL, s.settings.Version
	s.mu.Unlock()

	contents, err := s.cache.loadContents(ctx, base, version)
	if err != nil {
		s.log.Debug("Unable to restore book structure", zap.Error(err))
		s.cache.removeSettings(ctx, base, version)
		s.cache.removeContents(ctx, base, version)

		s.mu.Lock()
		s.settings.Stored = false
		contained := s.settings.Contained
		s.mu.Unlock()

		if contained {
			return s.unarchive(ctx)
		}
		return s.unpack(ctx, base)
	}

	s.mu.Lock()
	s.contents = contents
	s.mu.Unlock()

	s.ready.resolveStructure(contents)
	s.ready.resolveTOC(contents.TOC)
	s.log.Debug("Book structure restored", zap.Int("spine", len(contents.Spine)))
	return nil
}

func (s *Session) unarchive(ctx context.Context) error {
	if s.unarchiver == nil {
		return &LoadError{Stage: StageArchive, Err: ErrNoUnarchiver}
	}
	base, err := s.unarchiver.Unarchive(ctx, s.BookURL())
	if err != nil {
		return &LoadError{Stage: StageArchive, Err: err}
	}
	return s.unpack(ctx, base)
}

// unpack discovers book structure starting at container descriptor. Stages
// run strictly in order, first failure aborts.
func (s *Session) unpack(ctx context.Context, base string) error {
	doc, err := s.loadXML(ctx, base+epub.ContainerPath)
	if err != nil {
		return &LoadError{Stage: StageContainer, Err: err}
	}
	paths, err := epub.ParseContainer(doc)
	if err != nil {
		return &LoadError{Stage: StageContainer, Err: err}
	}

	c := &Contents{
		ContentsPath: base + paths.BasePath,
		PackageURL:   base + paths.BasePath + paths.PackagePath,
	}
	if doc, err = s.loadXML(ctx, c.PackageURL); err != nil {
		return &LoadError{Stage: StagePackage, Err: err}
	}
	pkg, err := epub.ParsePackage(doc, c.ContentsPath)
	if err != nil {
		return &LoadError{Stage: StagePackage, Err: err}
	}
	c.Manifest = pkg.Manifest
	c.Spine = pkg.Spine
	c.SpineIndexByURL = pkg.SpineIndexByURL
	c.Metadata = pkg.Metadata
	c.Cover = pkg.CoverURL()

	s.mu.Lock()
	s.contents = c
	s.mu.Unlock()
	s.ready.resolveStructure(c)

	if pkg.TocID == "" {
		return &LoadError{Stage: StageToc, Err: epub.ErrNoTOC}
	}
	c.TocURL = pkg.TocURL()
	if doc, err = s.loadXML(ctx, c.TocURL); err != nil {
		return &LoadError{Stage: StageToc, Err: err}
	}
	toc, err := epub.ParseTOC(doc, c.TocURL, c.SpineIndexByURL)
	if err != nil {
		return &LoadError{Stage: StageToc, Err: err}
	}

	s.mu.Lock()
	c.TOC = toc
	s.mu.Unlock()
	s.ready.resolveTOC(toc)

	s.log.Debug("Book structure loaded",
		zap.String("package", c.PackageURL),
		zap.Int("manifest", len(c.Manifest)),
		zap.Int("spine", len(c.Spine)),
		zap.Int("toc", len(toc)))
	return nil
}

func (s *Session) loadXML(ctx context.Context, addr string) (*etree.Document, error) {
	data, err := s.fetch(ctx, addr, storage.FormatXml)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s: %w", addr, err)
	}
	doc, err := epub.ReadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", addr, err)
	}
	return doc, nil
}
