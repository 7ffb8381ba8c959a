package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	KindOficio    = "oficio"
	KindMemorando = "memorando"
)

// Document is a fillable official document
type Document interface {
	// Kind selects the template_<kind>.tex template
	Kind() string

	// Validate reports the first missing required field
	Validate() error

	// Fields returns the placeholder values; now is used when no date was given
	Fields(now time.Time) map[string]string
}

// Person is a named office holder
type Person struct {
	Name  string `yaml:"nome"`
	Title string `yaml:"cargo"`
}

// Agency identifies the issuing body
type Agency struct {
	Name    string `yaml:"nome"`
	Acronym string `yaml:"sigla"`
	City    string `yaml:"cidade"`
}

// Recipient is the addressee of an ofício
type Recipient struct {
	Person  `yaml:",inline"`
	Address string `yaml:"endereco"`
	City    string `yaml:"cidade"`
	State   string `yaml:"uf"`
}

// Oficio is an external official letter
type Oficio struct {
	Number     string     `yaml:"numero"`
	Date       *time.Time `yaml:"data,omitempty"`
	Subject    string     `yaml:"assunto"`
	Salutation string     `yaml:"vocativo,omitempty"`
	Closing    string     `yaml:"fecho,omitempty"`
	Body       string     `yaml:"corpo"`
	Recipient  Recipient  `yaml:"destinatario"`
	Signatory  Person     `yaml:"signatario"`
	Agency     Agency     `yaml:"orgao"`
}

// Kind implements Document
func (o *Oficio) Kind() string { return KindOficio }

// Validate implements Document
func (o *Oficio) Validate() error {
	return firstMissing(
		required{"destinatario", "nome", o.Recipient.Name},
		required{"destinatario", "cargo", o.Recipient.Title},
		required{"signatario", "nome", o.Signatory.Name},
		required{"signatario", "cargo", o.Signatory.Title},
		required{"orgao", "sigla", o.Agency.Acronym},
		required{"orgao", "nome", o.Agency.Name},
		required{"orgao", "cidade", o.Agency.City},
	)
}

// Fields implements Document
func (o *Oficio) Fields(now time.Time) map[string]string {
	date := resolveDate(o.Date, now)

	return map[string]string{
		"NUMERO":                o.Number,
		"ANO":                   strconv.Itoa(date.Year()),
		"SIGLA_ORGAO":           o.Agency.Acronym,
		"NOME_ORGAO":            o.Agency.Name,
		"CIDADE":                o.Agency.City,
		"DATA_EXTENSO":          FormatLongDate(date),
		"NOME_DESTINATARIO":     o.Recipient.Name,
		"CARGO_DESTINATARIO":    o.Recipient.Title,
		"ENDERECO_DESTINATARIO": o.Recipient.Address,
		"CIDADE_DESTINATARIO":   o.Recipient.City,
		"UF_DESTINATARIO":       o.Recipient.State,
		"ASSUNTO":               o.Subject,
		"VOCATIVO":              valueOr(o.Salutation, "Senhor"),
		BodyField:               o.Body,
		"FECHO":                 valueOr(o.Closing, "Atenciosamente"),
		"NOME_SIGNATARIO":       o.Signatory.Name,
		"CARGO_SIGNATARIO":      o.Signatory.Title,
	}
}

// Memorando is an internal memo between units of the same agency
type Memorando struct {
	Number    string     `yaml:"numero"`
	Date      *time.Time `yaml:"data,omitempty"`
	ToUnit    string     `yaml:"setor_destinatario"`
	Subject   string     `yaml:"assunto"`
	Body      string     `yaml:"corpo"`
	Signatory Person     `yaml:"signatario"`
	Agency    Agency     `yaml:"orgao"`
}

// Kind implements Document
func (m *Memorando) Kind() string { return KindMemorando }

// Validate implements Document
func (m *Memorando) Validate() error {
	return firstMissing(
		required{"signatario", "nome", m.Signatory.Name},
		required{"signatario", "cargo", m.Signatory.Title},
		required{"orgao", "sigla", m.Agency.Acronym},
		required{"orgao", "nome", m.Agency.Name},
		required{"orgao", "cidade", m.Agency.City},
	)
}

// Fields implements Document
func (m *Memorando) Fields(now time.Time) map[string]string {
	date := resolveDate(m.Date, now)

	return map[string]string{
		"NUMERO":             m.Number,
		"ANO":                strconv.Itoa(date.Year()),
		"SIGLA_ORGAO":        m.Agency.Acronym,
		"NOME_ORGAO":         m.Agency.Name,
		"CIDADE":             m.Agency.City,
		"DATA_EXTENSO":       FormatLongDate(date),
		"DESTINATARIO_SETOR": m.ToUnit,
		"ASSUNTO":            m.Subject,
		BodyField:            m.Body,
		"NOME_SIGNATARIO":    m.Signatory.Name,
		"CARGO_SIGNATARIO":   m.Signatory.Title,
	}
}

var kinds = map[string]func() Document{
	KindOficio:    func() Document { return &Oficio{} },
	KindMemorando: func() Document { return &Memorando{} },
}

// Kinds lists the supported document kinds
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Decode parses YAML data into the document type for kind and validates it
func Decode(kind string, data []byte) (Document, error) {
	factory, ok := kinds[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown document kind %q (supported: %s)", kind, strings.Join(Kinds(), ", "))
	}

	doc := factory()
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", kind, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

type required struct {
	section, field, value string
}

func firstMissing(fields ...required) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Section: f.section, Field: f.field}
		}
	}
	return nil
}

func resolveDate(date *time.Time, now time.Time) time.Time {
	if date != nil && !date.IsZero() {
		return *date
	}
	return now
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
