package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"supergithub/pkg/document"
)

var (
	docData   string
	docOutput string
	docTeX    bool
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Generate and validate Brazilian official documents",
	Long: `Generate ofícios and memorandos as PDF from LaTeX templates, and check
document text against the federal writing manual.

Templates are embedded; set documents.template_dir in the config file or
SUPERGITHUB_TEMPLATE_DIR to use your own template_<kind>.tex files.`,
}

var docGenerateCmd = &cobra.Command{
	Use:   "generate <kind>",
	Short: "Generate a PDF document from YAML data",
	Long: fmt.Sprintf(`Fill the template for <kind> with the YAML data file and compile it to PDF.

Supported kinds: %s

Examples:
  supergithub doc generate oficio --data oficio.yaml --output oficio.pdf
  supergithub doc generate memorando --data memo.yaml --tex --output memo.tex`,
		strings.Join(document.Kinds(), ", ")),
	Args:      cobra.ExactArgs(1),
	ValidArgs: document.Kinds(),
	RunE:      runDocGenerate,
}

var docValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check document text against the official writing style",
	Long: `Check a text file for numbering, pronoun agreement, closing, paragraph length,
legal citations, dates, formatting and register problems.

Errors make the command exit with status 1; warnings do not.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocValidate,
}

func init() {
	docGenerateCmd.Flags().StringVar(&docData, "data", "", "YAML file with the document fields")
	docGenerateCmd.Flags().StringVarP(&docOutput, "output", "o", "", "Output file (default <kind>.pdf)")
	docGenerateCmd.Flags().BoolVar(&docTeX, "tex", false, "Write the filled LaTeX source instead of compiling it")
	_ = docGenerateCmd.MarkFlagRequired("data")

	docCmd.AddCommand(docGenerateCmd, docValidateCmd)
	rootCmd.AddCommand(docCmd)
}

func newGenerator() *document.Generator {
	compiler := document.NewPDFLaTeX()
	compiler.Binary = cfg.Documents.Compiler
	compiler.Passes = cfg.Documents.Passes
	compiler.Timeout = cfg.Documents.CompileTimeout

	return document.NewGenerator(
		document.WithTemplateDir(cfg.Documents.TemplateDir),
		document.WithCompiler(compiler),
	)
}

func runDocGenerate(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(args[0])

	data, err := os.ReadFile(docData)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	doc, err := document.Decode(kind, data)
	if err != nil {
		return err
	}

	output := docOutput
	if output == "" {
		ext := ".pdf"
		if docTeX {
			ext = ".tex"
		}
		output = kind + ext
	}

	generator := newGenerator()
	out := cmd.OutOrStdout()

	if docTeX {
		tex, err := generator.RenderDocument(doc)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(output, []byte(tex), 0644); err != nil {
			return fmt.Errorf("failed to write LaTeX source: %w", err)
		}
		printSuccess(out, "LaTeX source written to %s", output)
		return nil
	}

	if err := generator.GenerateDocument(cmd.Context(), doc, output); err != nil {
		return err
	}

	printSuccess(out, "Document generated: %s", output)
	return nil
}

func runDocValidate(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	result := document.NewValidator().Validate(string(text))
	out := cmd.OutOrStdout()

	for _, issue := range result.Errors {
		printFailure(out, "%s", issue)
	}
	for _, issue := range result.Warnings {
		printWarning(out, "%s", issue)
	}

	if !result.OK() {
		return fmt.Errorf("document has %d error(s) and %d warning(s)", len(result.Errors), len(result.Warnings))
	}

	printSuccess(out, "Document follows the official style (%d warning(s))", len(result.Warnings))
	return nil
}
