package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"meterc/internal/cache"
	"meterc/internal/diag"
	"meterc/internal/document"
	"meterc/internal/schema"
	"meterc/internal/source"
)

// loaded — результат загрузки и валидации одного файла
type loaded struct {
	file     *source.File
	doc      *document.Document
	schemaID string
	family   schema.Family
	diags    []diag.Diagnostic
	invalid  bool // документ с нарушениями схемы не инстанцируется
	fatal    error
}

func (p *Parser) loadAll(ctx context.Context, fileSet *source.FileSet, ids []source.FileID) ([]loaded, error) {
	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]loaded, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(p.opts.Jobs, len(ids)))
	for i, id := range ids {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = p.loadOne(fileSet.Get(id))
			if p.opts.OnFile != nil {
				p.opts.OnFile(results[i].file.Path, results[i].fatal)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// первая фатальная ошибка в каноническом порядке
	for _, r := range results {
		if r.fatal != nil {
			return nil, r.fatal
		}
	}
	return results, nil
}

func (p *Parser) loadOne(file *source.File) loaded {
	out := loaded{file: file}
	if file.Flags&source.FileMissing != 0 {
		return out
	}

	doc, err := document.Decode(file.Path, file.Content)
	if err != nil {
		out.diags = append(out.diags, decodeDiagnostic(file.Path, err))
		return out
	}
	out.doc = doc

	rawID, hasID := doc.Root["$schema"]
	id, _ := rawID.(string)
	if !hasID || id == "" {
		if len(doc.Root) == 0 {
			// пустой документ ничего не определяет
			return out
		}
		out.diags = append(out.diags, diag.NewError(diag.SchMissingID, file.Path, "",
			fmt.Sprintf("$schema key must be set to one of: %s", strings.Join(p.opts.Registry.Known(), ", "))))
		out.invalid = true
		return out
	}
	family, _, ok := schema.ParseID(id)
	if _, err := p.opts.Registry.Get(id); !ok || err != nil {
		out.fatal = &diag.FatalError{
			Code: diag.SchUnknownID,
			Path: file.Path,
			Msg:  (&schema.UnknownSchemaError{ID: id, Known: p.opts.Registry.Known()}).Error(),
			Err:  err,
		}
		return out
	}
	out.schemaID, out.family = id, family

	out.diags = append(out.diags, p.validateCached(file, doc, id)...)
	for _, d := range out.diags {
		if d.Severity >= diag.SevError {
			out.invalid = true
			break
		}
	}
	return out
}

func (p *Parser) validateCached(file *source.File, doc *document.Document, id string) []diag.Diagnostic {
	if p.opts.Cache == nil {
		return p.validator.ValidateDocument(doc, id)
	}
	key := cache.KeyFor(id, file.Hash)
	diags, ok, err := p.opts.Cache.Get(key, file.Path)
	if err != nil {
		p.opts.Log.Warn().Err(err).Str("path", file.Path).Msg("validation cache read failed")
	}
	if ok {
		p.opts.Log.Debug().Str("path", file.Path).Str("key", key.String()).Msg("validation cache hit")
		return diags
	}
	diags = p.validator.ValidateDocument(doc, id)
	if err := p.opts.Cache.Put(key, id, diags); err != nil {
		p.opts.Log.Warn().Err(err).Str("path", file.Path).Msg("validation cache write failed")
	}
	return diags
}

func decodeDiagnostic(path string, err error) diag.Diagnostic {
	var dup *document.DuplicateKeyError
	var ext *document.UnknownExtensionError
	switch {
	case errors.As(err, &dup):
		d := diag.NewError(diag.IODuplicateKey, path, "", err.Error())
		d.Pos = source.LineCol{Line: uint32(dup.Line), Col: uint32(dup.Col)} // #nosec G115
		return d
	case errors.As(err, &ext):
		return diag.NewError(diag.IOUnknownExtension, path, "", err.Error())
	case errors.Is(err, document.ErrNotAMapping):
		return diag.NewError(diag.IONotAMapping, path, "", err.Error())
	default:
		return diag.NewError(diag.IODecodeError, path, "", err.Error())
	}
}
