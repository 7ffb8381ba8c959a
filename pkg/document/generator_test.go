package document

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler records the LaTeX it receives
type fakeCompiler struct {
	tex string
	pdf []byte
	err error
}

func (f *fakeCompiler) Compile(_ context.Context, tex string) ([]byte, error) {
	f.tex = tex
	return f.pdf, f.err
}

var generatedAt = time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)

const oficioYAML = `
numero: "123"
assunto: Solicitação de informações & prazos
vocativo: Senhor Diretor
corpo: |
  Solicita-se informação.\par
  Agradece-se a atenção.
destinatario:
  nome: João da Silva
  cargo: Diretor do Departamento de Administração
  endereco: Esplanada dos Ministérios, Bloco A
  cidade: Brasília
  uf: DF
signatario:
  nome: Maria Oliveira
  cargo: Coordenadora-Geral de Planejamento
orgao:
  nome: MINISTÉRIO DA ADMINISTRAÇÃO
  sigla: MA
  cidade: Brasília
`

func TestDecode(t *testing.T) {
	t.Run("oficio with defaults", func(t *testing.T) {
		doc, err := Decode("oficio", []byte(oficioYAML))
		require.NoError(t, err)
		assert.Equal(t, KindOficio, doc.Kind())

		fields := doc.Fields(generatedAt)
		assert.Equal(t, "123", fields["NUMERO"])
		assert.Equal(t, "2025", fields["ANO"])
		assert.Equal(t, "13 de janeiro de 2025", fields["DATA_EXTENSO"])
		assert.Equal(t, "Senhor Diretor", fields["VOCATIVO"])
		assert.Equal(t, "Atenciosamente", fields["FECHO"])
		assert.Equal(t, "DF", fields["UF_DESTINATARIO"])
		assert.Contains(t, fields[BodyField], `\par`)
	})

	t.Run("explicit date wins over clock", func(t *testing.T) {
		doc, err := Decode("memorando", []byte(`
numero: "045"
data: 2024-03-01
setor_destinatario: Coordenação de Recursos Humanos
assunto: Encaminhamento
corpo: Texto.
signatario: {nome: Carlos Pereira, cargo: Chefe de Divisão}
orgao: {nome: DEPARTAMENTO DE GESTÃO DE PESSOAS, sigla: DGP, cidade: Brasília}
`))
		require.NoError(t, err)

		fields := doc.Fields(generatedAt)
		assert.Equal(t, "1 de março de 2024", fields["DATA_EXTENSO"])
		assert.Equal(t, "2024", fields["ANO"])
		assert.Equal(t, "Coordenação de Recursos Humanos", fields["DESTINATARIO_SETOR"])
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := Decode("oficio", []byte(strings.Replace(oficioYAML, "sigla: MA", "sigla: ''", 1)))

		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "orgao", missing.Section)
		assert.Equal(t, "sigla", missing.Field)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Decode("parecer", []byte(oficioYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memorando, oficio")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Decode("oficio", []byte("numero: [unterminated"))
		require.Error(t, err)
	})
}

func TestGenerator_LoadTemplate(t *testing.T) {
	t.Run("embedded templates", func(t *testing.T) {
		g := NewGenerator()
		for _, kind := range Kinds() {
			tpl, err := g.LoadTemplate(kind)
			require.NoError(t, err, kind)
			assert.Contains(t, tpl, Placeholder(BodyField))
		}
	})

	t.Run("template directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateName("oficio")), []byte("{{NUMERO}}"), 0644))

		g := NewGenerator(WithTemplateDir(dir))
		tpl, err := g.LoadTemplate("oficio")
		require.NoError(t, err)
		assert.Equal(t, "{{NUMERO}}", tpl)

		_, err = g.LoadTemplate("memorando")
		var notFound *TemplateNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "memorando", notFound.Kind)
		assert.Equal(t, filepath.Join(dir, "template_memorando.tex"), notFound.Path)
	})
}

func TestGenerator_Generate(t *testing.T) {
	templates := fstest.MapFS{
		"template_oficio.tex": {Data: []byte(`\section{ {{ASSUNTO}} } {{CORPO_TEXTO}} -- {{DATA_EXTENSO}}`)},
	}

	t.Run("writes compiled PDF", func(t *testing.T) {
		compiler := &fakeCompiler{pdf: []byte("%PDF-1.5 fake")}
		g := NewGenerator(WithTemplateFS(templates), WithCompiler(compiler), WithNow(func() time.Time { return generatedAt }))

		doc, err := Decode("oficio", []byte(oficioYAML))
		require.NoError(t, err)

		out := filepath.Join(t.TempDir(), "nested", "oficio.pdf")
		require.NoError(t, g.GenerateDocument(context.Background(), doc, out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.5 fake", string(data))

		assert.Contains(t, compiler.tex, `Solicitação de informações \& prazos`)
		assert.Contains(t, compiler.tex, "Solicita-se informação.\\par\nAgradece-se a atenção.")
		assert.Contains(t, compiler.tex, "13 de janeiro de 2025")
	})

	t.Run("generate with explicit fields", func(t *testing.T) {
		compiler := &fakeCompiler{pdf: []byte("%PDF")}
		g := NewGenerator(WithTemplateFS(templates), WithCompiler(compiler))

		out := filepath.Join(t.TempDir(), "doc.pdf")
		err := g.Generate(context.Background(), "oficio", map[string]string{
			"ASSUNTO":      "100%",
			BodyField:      `\textit{ok}`,
			"DATA_EXTENSO": "hoje",
		}, out)
		require.NoError(t, err)
		assert.Equal(t, `\section{ 100\% } \textit{ok} -- hoje`, compiler.tex)
	})

	t.Run("compiler failure is returned and nothing is written", func(t *testing.T) {
		compiler := &fakeCompiler{err: &CompilationError{LogTail: "! Undefined control sequence."}}
		g := NewGenerator(WithTemplateFS(templates), WithCompiler(compiler))

		out := filepath.Join(t.TempDir(), "doc.pdf")
		err := g.Generate(context.Background(), "oficio", map[string]string{}, out)

		var compErr *CompilationError
		require.ErrorAs(t, err, &compErr)
		assert.Contains(t, compErr.Error(), "Undefined control sequence")
		assert.NoFileExists(t, out)
	})

	t.Run("missing template", func(t *testing.T) {
		g := NewGenerator(WithTemplateFS(templates), WithCompiler(&fakeCompiler{}))

		err := g.Generate(context.Background(), "memorando", nil, filepath.Join(t.TempDir(), "x.pdf"))
		var notFound *TemplateNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

// writeScript installs an executable shell script standing in for pdflatex
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-pdflatex")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestPDFLaTeX_Compile(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		p := NewPDFLaTeX()
		p.Binary = "definitely-not-a-latex-compiler"

		_, err := p.Compile(context.Background(), "x")

		var compErr *CompilationError
		require.ErrorAs(t, err, &compErr)
		assert.Contains(t, compErr.Error(), "not found")
	})

	t.Run("runs every pass and returns the PDF", func(t *testing.T) {
		counter := filepath.Join(t.TempDir(), "passes")
		p := NewPDFLaTeX()
		p.Binary = writeScript(t, `echo pass >> "`+counter+`"
cp documento.tex documento.pdf
`)

		pdf, err := p.Compile(context.Background(), "conteúdo")
		require.NoError(t, err)
		assert.Equal(t, "conteúdo", string(pdf))

		passes, err := os.ReadFile(counter)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(passes), "pass"))
	})

	t.Run("no PDF yields the log tail", func(t *testing.T) {
		p := NewPDFLaTeX()
		p.Passes = 1
		p.Binary = writeScript(t, `i=0
while [ $i -lt 300 ]; do echo "filler line $i" >> documento.log; i=$((i+1)); done
echo "! LaTeX Error: File missing.sty not found." >> documento.log
exit 1
`)

		_, err := p.Compile(context.Background(), "x")

		var compErr *CompilationError
		require.ErrorAs(t, err, &compErr)
		assert.LessOrEqual(t, len(compErr.LogTail), 2000)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(compErr.LogTail), "missing.sty not found."))
	})

	t.Run("cancelled context", func(t *testing.T) {
		p := NewPDFLaTeX()
		p.Binary = writeScript(t, "exec sleep 5\n")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := p.Compile(ctx, "x")
		var compErr *CompilationError
		require.ErrorAs(t, err, &compErr)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("real pdflatex", func(t *testing.T) {
		if _, err := exec.LookPath(DefaultCompilerBinary); err != nil {
			t.Skip("pdflatex not installed")
		}

		g := NewGenerator(WithNow(func() time.Time { return generatedAt }))
		doc, err := Decode("oficio", []byte(oficioYAML))
		require.NoError(t, err)

		out := filepath.Join(t.TempDir(), "oficio.pdf")
		require.NoError(t, g.GenerateDocument(context.Background(), doc, out))
		assert.FileExists(t, out)
	})
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail([]byte("short"), 10))
	assert.Equal(t, "ão", tail([]byte("xação"), 4))
	assert.Equal(t, "", tail([]byte("aç"), 1))

	// The cut lands on the second byte of a "ç"
	log := []byte(strings.Repeat("ç", 1500) + "!")
	got := tail(log, logTailBytes)
	assert.Len(t, got, logTailBytes-1)
	assert.True(t, utf8.ValidString(got))
}
