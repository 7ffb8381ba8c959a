package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"

	logger "github.com/sirupsen/logrus"
)

const (
	DefaultCompilerBinary = "pdflatex"
	DefaultPasses         = 2
	DefaultPassTimeout    = 30 * time.Second

	// logTailBytes is how much of the compiler log is attached to a CompilationError
	logTailBytes = 2000

	jobName = "documento"
)

// Compiler turns LaTeX source into PDF bytes
type Compiler interface {
	Compile(ctx context.Context, tex string) ([]byte, error)
}

// PDFLaTeX runs pdflatex in a throwaway directory. Two passes are the default
// so cross-references introduced by the first pass are resolved.
type PDFLaTeX struct {
	Binary  string
	Passes  int
	Timeout time.Duration

	log *logger.Entry
}

// NewPDFLaTeX returns a compiler with default binary, passes and timeout
func NewPDFLaTeX() *PDFLaTeX {
	return &PDFLaTeX{
		Binary:  DefaultCompilerBinary,
		Passes:  DefaultPasses,
		Timeout: DefaultPassTimeout,
		log:     logger.WithField("component", "compiler"),
	}
}

// Compile implements Compiler. A run that leaves no PDF behind fails with a
// CompilationError carrying the tail of the compiler log.
func (p *PDFLaTeX) Compile(ctx context.Context, tex string) ([]byte, error) {
	binary, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, &CompilationError{Cause: fmt.Errorf("%s not found in PATH: %w", p.binary(), err)}
	}

	workDir, err := os.MkdirTemp("", "supergithub-doc-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	texFile := filepath.Join(workDir, jobName+".tex")
	if err := os.WriteFile(texFile, []byte(tex), 0600); err != nil {
		return nil, fmt.Errorf("failed to write LaTeX source: %w", err)
	}

	passes := p.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	for pass := 1; pass <= passes; pass++ {
		p.logger().WithField("pass", pass).Debug("running LaTeX compiler")
		if err := p.run(ctx, binary, workDir); err != nil {
			// A non-zero exit is expected on warnings; only ctx expiry aborts
			if ctx.Err() != nil {
				return nil, &CompilationError{LogTail: readTail(workDir), Cause: ctx.Err()}
			}
			p.logger().WithError(err).WithField("pass", pass).Debug("compiler exited with error")
		}
	}

	pdf, err := os.ReadFile(filepath.Join(workDir, jobName+".pdf"))
	if err != nil {
		return nil, &CompilationError{LogTail: readTail(workDir), Cause: errors.New("no PDF was produced")}
	}
	return pdf, nil
}

func (p *PDFLaTeX) run(ctx context.Context, binary, workDir string) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPassTimeout
	}
	passCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(passCtx, binary, "-interaction=nonstopmode", jobName+".tex")
	cmd.Dir = workDir
	cmd.WaitDelay = time.Second
	if out, err := cmd.CombinedOutput(); err != nil {
		if passCtx.Err() != nil {
			return fmt.Errorf("pass timed out after %s: %w", timeout, passCtx.Err())
		}
		return fmt.Errorf("%w: %s", err, tail(out, 200))
	}
	return nil
}

func (p *PDFLaTeX) binary() string {
	if p.Binary == "" {
		return DefaultCompilerBinary
	}
	return p.Binary
}

func (p *PDFLaTeX) logger() *logger.Entry {
	if p.log == nil {
		return logger.WithField("component", "compiler")
	}
	return p.log
}

func readTail(workDir string) string {
	data, err := os.ReadFile(filepath.Join(workDir, jobName+".log"))
	if err != nil {
		return ""
	}
	return tail(data, logTailBytes)
}

// tail returns at most the last n bytes of data, starting on a rune boundary
func tail(data []byte, n int) string {
	if len(data) > n {
		data = data[len(data)-n:]
		for len(data) > 0 && !utf8.RuneStart(data[0]) {
			data = data[1:]
		}
	}
	return string(data)
}
