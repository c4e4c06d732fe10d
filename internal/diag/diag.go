// Package diag implements structured elaborator diagnostics: one error per
// failed declaration, carrying a stable code, a source range, and enough
// context (the unified terms, the clashing names) to render a useful
// message or re-encode as JSON for tooling.
package diag

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/schema"
)

// Error code taxonomy. Every code names exactly one of the elaborator's
// named failure conditions.
const (
	ELB001 = "ELB001" // UnresolvedName
	ELB002 = "ELB002" // UnresolvedLevel
	ELB003 = "ELB003" // SymbolShadowedByLocal
	ELB004 = "ELB004" // LevelMismatch
	ELB005 = "ELB005" // TypeMismatch
	ELB006 = "ELB006" // TypeExpected
	ELB007 = "ELB007" // TooManyArgs
	ELB008 = "ELB008" // TypeFormerHasIvars
	ELB009 = "ELB009" // CtorTypeHasIvars
	ELB010 = "ELB010" // CtorNeedsTypeCauseIndices
	ELB011 = "ELB011" // NameCollision
	ELB012 = "ELB012" // DeclarationHasIvars
	ELB013 = "ELB013" // InductiveError
)

// Range is a byte-offset source span, [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Encoded is the JSON-serializable form of a Diagnostic.
type Encoded struct {
	Schema  string      `json:"schema"`
	Phase   string      `json:"phase"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Span    Range       `json:"span"`
	Context interface{} `json:"context,omitempty"`
}

// Diagnostic is one elaboration failure. It is accumulated in a session's
// error list rather than returned up the call stack, so the rest of the
// item can be abandoned cleanly without unwinding Go's call stack via
// panics for ordinary user errors.
type Diagnostic struct {
	Code    string
	Message string
	Span    Range
	Context interface{}
}

func New(code string, span Range, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// WithContext attaches structured context (e.g. both sides of a failed
// def_eq, pretty-printed) for tooling to render alongside the message.
func (d Diagnostic) WithContext(ctx interface{}) Diagnostic {
	d.Context = ctx
	return d
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Encode converts d to its JSON-serializable form.
func (d Diagnostic) Encode() Encoded {
	return Encoded{
		Schema:  schema.ErrorV1,
		Phase:   "elaboration",
		Code:    d.Code,
		Message: d.Message,
		Span:    d.Span,
		Context: d.Context,
	}
}

// ToJSON renders d as deterministic, schema-tagged JSON.
func (d Diagnostic) ToJSON() ([]byte, error) {
	data, err := schema.MarshalDeterministic(d.Encode())
	if err != nil {
		return nil, fmt.Errorf("diag: encoding failed: %w", err)
	}
	return schema.FormatJSON(data)
}

// Constructors for each named failure condition, matching the elaborator's
// error sink contract.

func UnresolvedName(span Range, base, name string) Diagnostic {
	return New(ELB001, span, "unresolved name %q in %q", name, base)
}

func UnresolvedLevel(span Range, name string) Diagnostic {
	return New(ELB002, span, "unresolved universe parameter %q", name)
}

func SymbolShadowedByLocal(span Range, name string) Diagnostic {
	return New(ELB003, span, "%q refers to a local variable, not the symbol of the same name", name)
}

func LevelMismatch(span Range, expected, found string) Diagnostic {
	return New(ELB004, span, "universe mismatch: expected %s, found %s", expected, found)
}

func TypeMismatch(span Range, expected, found string) Diagnostic {
	return New(ELB005, span, "type mismatch: expected %s, found %s", expected, found)
}

func TypeExpected(span Range, found string) Diagnostic {
	return New(ELB006, span, "expected a type, found %s", found)
}

func TooManyArgs(span Range) Diagnostic {
	return New(ELB007, span, "too many arguments")
}

func TypeFormerHasIvars(span Range) Diagnostic {
	return New(ELB008, span, "inductive type former still has unresolved placeholders after elaboration")
}

func CtorTypeHasIvars(span Range) Diagnostic {
	return New(ELB009, span, "constructor type still has unresolved placeholders after elaboration")
}

func CtorNeedsTypeCauseIndices(span Range) Diagnostic {
	return New(ELB010, span, "constructor needs an explicit return type because the inductive has indices")
}

func NameCollision(span Range, name string) Diagnostic {
	return New(ELB011, span, "%q is already declared", name)
}

func DeclarationHasIvars(span Range, name string) Diagnostic {
	return New(ELB012, span, "%q still has unresolved placeholders after elaboration", name)
}

func InductiveError(span Range, err error) Diagnostic {
	return New(ELB013, span, "%s", err)
}
