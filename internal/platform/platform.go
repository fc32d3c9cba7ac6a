// Package platform holds the static registry that turns a raw handle, phone
// number, email or URL into the fully qualified destination of a link.
package platform

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// InputType tells the editor which kind of value a platform expects.
type InputType string

const (
	InputText  InputType = "text"
	InputPhone InputType = "phone"
	InputEmail InputType = "email"
	InputURL   InputType = "url"
)

// Category groups platforms in the link editor.
type Category string

const (
	CategoryMessaging    Category = "messaging"
	CategoryContact      Category = "contact"
	CategorySocial       Category = "social"
	CategoryProfessional Category = "professional"
	CategoryMusic        Category = "music"
	CategoryPayment      Category = "payment"
	CategoryOther        Category = "other"
)

// Kind selects how a rule builds a URL.
type Kind string

const (
	// KindTemplate replaces {input} in Template with the transformed input.
	KindTemplate Kind = "template"
	// KindPrefix appends the transformed input to Template.
	KindPrefix Kind = "prefix"
	// KindPassthrough uses the input as the URL, adding https:// when no
	// scheme is present.
	KindPassthrough Kind = "passthrough"
)

// Transform normalizes raw input before it is placed in a URL.
type Transform string

const (
	TransformRaw    Transform = "raw"    // trim spaces
	TransformHandle Transform = "handle" // trim spaces and leading @ or $
	TransformDigits Transform = "digits" // keep digits only
	TransformQuery  Transform = "query"  // query-escape
)

// Check is an optional input predicate.
type Check string

const (
	CheckNone   Check = ""
	CheckHandle Check = "handle"
	CheckPhone  Check = "phone"
	CheckEmail  Check = "email"
	CheckURL    Check = "url"
)

// Rule describes how to build a URL from user input.
type Rule struct {
	Kind      Kind      `json:"kind"`
	Template  string    `json:"template,omitempty"`
	Transform Transform `json:"transform,omitempty"`
}

// Platform is one registry entry.
type Platform struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Icon        string    `json:"icon"`
	InputType   InputType `json:"input_type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Rule        Rule      `json:"-"`
	Check       Check     `json:"-"`
}

// Errors returned by the registry.
var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrEmptyInput      = errors.New("input is required")
	ErrInvalidInput    = errors.New("input is not valid for this platform")
)

var (
	validate      = validator.New()
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
	unsafeSchemes = []string{"javascript:", "data:", "vbscript:", "file:"}
)

// Lookup returns the platform registered under key.
func Lookup(key string) (Platform, bool) {
	p, ok := byKey[strings.ToLower(key)]
	return p, ok
}

// All returns every platform ordered by category, then name.
func All() []Platform {
	out := append([]Platform(nil), registry...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories returns platforms grouped by category.
func Categories() map[Category][]Platform {
	out := make(map[Category][]Platform)
	for _, p := range All() {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}

// Validate checks raw against the platform's predicate.
func Validate(key, raw string) error {
	p, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, key)
	}
	return p.Validate(raw)
}

// BuildURL validates raw and returns the destination URL for platform key.
func BuildURL(key, raw string) (string, error) {
	p, ok := Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, key)
	}
	return p.BuildURL(raw)
}

// Validate checks raw against the platform's predicate.
func (p Platform) Validate(raw string) error {
	in := strings.TrimSpace(raw)
	if in == "" {
		return ErrEmptyInput
	}

	var ok bool
	switch p.Check {
	case CheckNone:
		ok = true
	case CheckHandle:
		ok = handlePattern.MatchString(strings.TrimLeft(in, "@$"))
	case CheckPhone:
		n := len(digits(in))
		ok = n >= 7 && n <= 15
	case CheckEmail:
		ok = validate.Var(in, "required,email") == nil
	case CheckURL:
		ok = validate.Var(withScheme(in), "required,url") == nil && !unsafe(in)
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidInput, p.Name)
	}
	return nil
}

// BuildURL validates raw and returns the destination URL.
func (p Platform) BuildURL(raw string) (string, error) {
	if err := p.Validate(raw); err != nil {
		return "", err
	}

	in := p.Rule.Transform.apply(raw)

	switch p.Rule.Kind {
	case KindTemplate:
		return strings.ReplaceAll(p.Rule.Template, "{input}", in), nil
	case KindPrefix:
		return p.Rule.Template + in, nil
	case KindPassthrough:
		if unsafe(in) {
			return "", fmt.Errorf("%w: %s", ErrInvalidInput, p.Name)
		}
		return withScheme(in), nil
	default:
		return "", fmt.Errorf("platform %s: unknown rule kind %q", p.Key, p.Rule.Kind)
	}
}

func (t Transform) apply(raw string) string {
	in := strings.TrimSpace(raw)
	switch t {
	case TransformHandle:
		return strings.TrimLeft(in, "@$")
	case TransformDigits:
		return digits(in)
	case TransformQuery:
		return url.QueryEscape(in)
	default:
		return in
	}
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, s)
}

func withScheme(s string) string {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return s
	}
	return "https://" + s
}

func unsafe(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
