// Package document fills Brazilian official-document LaTeX templates, compiles
// them to PDF and checks document text against the official writing style.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"supergithub/assets"
)

// Generator renders templates and compiles them
type Generator struct {
	templates fs.FS
	location  string
	compiler  Compiler
	now       func() time.Time
	log       *logger.Entry
}

// GeneratorOption customizes a Generator
type GeneratorOption func(*Generator)

// WithTemplateDir loads templates from dir instead of the embedded set
func WithTemplateDir(dir string) GeneratorOption {
	return func(g *Generator) {
		if dir != "" {
			g.templates = os.DirFS(dir)
			g.location = dir
		}
	}
}

// WithTemplateFS loads templates from fsys
func WithTemplateFS(fsys fs.FS) GeneratorOption {
	return func(g *Generator) {
		g.templates = fsys
		g.location = "<fs>"
	}
}

// WithCompiler replaces the default pdflatex compiler
func WithCompiler(c Compiler) GeneratorOption {
	return func(g *Generator) { g.compiler = c }
}

// WithNow injects the clock used for undated documents
func WithNow(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator using the embedded templates and pdflatex
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		templates: assets.Templates,
		location:  "<embedded>",
		compiler:  NewPDFLaTeX(),
		now:       time.Now,
		log:       logger.WithField("component", "document"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TemplateName returns the file name of the template for kind
func TemplateName(kind string) string {
	return fmt.Sprintf("template_%s.tex", kind)
}

// LoadTemplate reads the template for kind
func (g *Generator) LoadTemplate(kind string) (string, error) {
	name := TemplateName(kind)

	data, err := fs.ReadFile(g.templates, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateNotFoundError{Kind: kind, Path: filepath.Join(g.location, name)}
		}
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(data), nil
}

// Render fills the template for kind with fields
func (g *Generator) Render(kind string, fields map[string]string) (string, error) {
	template, err := g.LoadTemplate(kind)
	if err != nil {
		return "", err
	}
	return FillTemplate(template, fields), nil
}

// RenderDocument validates doc and fills its template
func (g *Generator) RenderDocument(doc Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	return g.Render(doc.Kind(), doc.Fields(g.now()))
}

// Generate renders kind with fields, compiles it and writes the PDF to outPath,
// creating parent directories as needed
func (g *Generator) Generate(ctx context.Context, kind string, fields map[string]string, outPath string) error {
	tex, err := g.Render(kind, fields)
	if err != nil {
		return err
	}
	return g.compileTo(ctx, kind, tex, outPath)
}

// GenerateDocument validates doc and writes its PDF to outPath
func (g *Generator) GenerateDocument(ctx context.Context, doc Document, outPath string) error {
	tex, err := g.RenderDocument(doc)
	if err != nil {
		return err
	}
	return g.compileTo(ctx, doc.Kind(), tex, outPath)
}

func (g *Generator) compileTo(ctx context.Context, kind, tex, outPath string) error {
	g.log.WithFields(logger.Fields{"kind": kind, "output": outPath}).Debug("compiling document")

	pdf, err := g.compiler.Compile(ctx, tex)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
