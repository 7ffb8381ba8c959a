package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue categories
const (
	CategoryNumbering     = "numbering"
	CategoryAgreement     = "agreement"
	CategoryClosing       = "closing"
	CategoryParagraph     = "paragraph"
	CategoryLegalCitation = "legal_citation"
	CategoryDate          = "date"
	CategoryFormatting    = "formatting"
	CategoryRegister      = "register"
)

const (
	closingWindow     = 20
	maxParagraphLines = 8
)

// Issue is a single validation finding
type Issue struct {
	Category string `json:"category" yaml:"category"`
	Message  string `json:"message" yaml:"message"`
	Line     *int   `json:"line,omitempty" yaml:"line,omitempty"`
}

func (i Issue) String() string {
	if i.Line != nil {
		return fmt.Sprintf("[%s] %s (linha %d)", strings.ToUpper(i.Category), i.Message, *i.Line)
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(i.Category), i.Message)
}

// Result accumulates errors, which block acceptance, and advisory warnings
type Result struct {
	Errors   []Issue `json:"errors" yaml:"errors"`
	Warnings []Issue `json:"warnings" yaml:"warnings"`
}

// OK reports whether the document has no errors
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(category, message string) {
	r.Errors = append(r.Errors, Issue{Category: category, Message: message})
}

func (r *Result) addWarning(category, message string, line *int) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Message: message, Line: line})
}

// wordRE matches word as a whole word. Boundaries are Unicode letters, so
// accented neighbours do not split a word.
func wordRE(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + word + `(?:$|[^\p{L}\p{N}_])`)
}

type pattern struct {
	re      *regexp.Regexp
	message string
}

var (
	numberingRE = regexp.MustCompile(`(?i)(Ofício|Memorando|Parecer|NT|EM)\s+n[°º]\s*\d+/\d{4}-[A-Z]+`)

	agreementPatterns = []pattern{
		{wordRE(`vossa\s+excelência\s+[\p{L}\p{N}_]*stes`), `Usar 3ª pessoa: "solicitou" não "solicitastes"`},
		{wordRE(`vossa\s+senhoria\s+[\p{L}\p{N}_]*stes`), `Usar 3ª pessoa: "enviou" não "enviastes"`},
		{wordRE(`vossa\s+excelência\s+podeis`), `Usar 3ª pessoa: "pode" não "podeis"`},
	}

	validClosings = []string{"atenciosamente", "respeitosamente"}

	legalPatterns = []pattern{
		{regexp.MustCompile(`(?i)art\.\s+\d+º`), `Usar "art. X" sem símbolo de grau`},
		{regexp.MustCompile(`(?i)lei\s+\d+/\d{4}`), `Usar "Lei nº X/AAAA" ou "Lei nº X, de DD de MMMM de AAAA"`},
	}
	constitutionRE = regexp.MustCompile(`(?i)CF/(\d{2})(\d?)`)

	hyphenDateRE = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

	blankLinesRE  = regexp.MustCompile(`\n{4,}`)
	multiSpaceRE  = regexp.MustCompile(` {3,}`)
	firstPersonRE = wordRE(`(?:eu|meu|minha|meus|minhas|me|comigo)`)

	colloquialisms = []struct {
		re   *regexp.Regexp
		expr string
	}{
		{wordRE(`tipo\s+assim`), "tipo assim"},
		{wordRE(`meio\s+que`), "meio que"},
		{wordRE(`tipo`), "tipo"},
		{wordRE(`tipo\s+um`), "tipo um"},
	}
)

// Validator checks official-document text against the federal writing manual.
// It holds no state between calls.
type Validator struct {
	checks []func(text string, r *Result)
}

// NewValidator returns a validator running every check
func NewValidator() *Validator {
	return &Validator{
		checks: []func(string, *Result){
			checkNumbering,
			checkAgreement,
			checkClosing,
			checkParagraphs,
			checkLegalCitations,
			checkDates,
			checkFormatting,
			checkRegister,
		},
	}
}

// Validate runs every check and returns a fresh result
func (v *Validator) Validate(text string) *Result {
	r := &Result{Errors: []Issue{}, Warnings: []Issue{}}
	for _, check := range v.checks {
		check(text, r)
	}
	return r
}

func checkNumbering(text string, r *Result) {
	if !numberingRE.MatchString(text) {
		r.addError(CategoryNumbering,
			"Numeração de documento não encontrada ou em formato inválido. Use: [Tipo] nº XXX/AAAA-SIGLA")
	}
}

// Only the first agreement problem is reported
func checkAgreement(text string, r *Result) {
	for _, p := range agreementPatterns {
		if p.re.MatchString(text) {
			r.addError(CategoryAgreement, p.message)
			return
		}
	}
}

func checkClosing(text string, r *Result) {
	lines := strings.Split(text, "\n")
	if len(lines) > closingWindow {
		lines = lines[len(lines)-closingWindow:]
	}
	ending := strings.ToLower(strings.Join(lines, "\n"))

	for _, closing := range validClosings {
		if strings.Contains(ending, closing) {
			return
		}
	}
	r.addWarning(CategoryClosing, `Fecho não encontrado ou inválido. Use "Atenciosamente," ou "Respeitosamente,"`, nil)
}

func checkParagraphs(text string, r *Result) {
	index := 0
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		index++

		lines := strings.Count(paragraph, "\n") + 1
		if lines > maxParagraphLines {
			n := index
			r.addWarning(CategoryParagraph,
				fmt.Sprintf("Parágrafo %d muito longo (%d linhas). Recomendação: 2-6 linhas por parágrafo", n, lines),
				&n)
		}
	}
}

func checkLegalCitations(text string, r *Result) {
	for _, p := range legalPatterns {
		if p.re.MatchString(text) {
			r.addWarning(CategoryLegalCitation, p.message, nil)
		}
	}

	for _, m := range constitutionRE.FindAllStringSubmatch(text, -1) {
		if m[2] == "" && m[1] != "88" {
			r.addWarning(CategoryLegalCitation, `Usar "CF/88" ou "Constituição Federal de 1988"`, nil)
			return
		}
	}
}

func checkDates(text string, r *Result) {
	if hyphenDateRE.MatchString(text) {
		r.addError(CategoryDate, `Usar "/" ou "." para separar datas, não "-"`)
	}
}

func checkFormatting(text string, r *Result) {
	if blankLinesRE.MatchString(text) {
		r.addWarning(CategoryFormatting, "Evitar mais de 2 linhas em branco consecutivas", nil)
	}
	if multiSpaceRE.MatchString(text) {
		r.addWarning(CategoryFormatting, "Evitar múltiplos espaços consecutivos", nil)
	}
}

func checkRegister(text string, r *Result) {
	if firstPersonRE.MatchString(text) {
		r.addWarning(CategoryRegister, "Evitar primeira pessoa. Usar linguagem impessoal", nil)
	}

	for _, c := range colloquialisms {
		if c.re.MatchString(text) {
			r.addWarning(CategoryRegister,
				fmt.Sprintf(`Expressão coloquial detectada: "%s". Usar linguagem formal`, c.expr), nil)
		}
	}
}
