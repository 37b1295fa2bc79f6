package students

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrDomainNotAllowed  = errors.New("email domain is not allowed")
	ErrInvalidEnrollment = errors.New("could not parse enrollment id")
)

// Enrollment is derived from the local part of a student's email.
type Enrollment struct {
	Number    string `json:"number"`
	Branch    string `json:"branch"`
	Semester  string `json:"semester"`
	Section   string `json:"section"`
	AdmitYear int    `json:"admit_year"`
}

// SectionRule assigns a section to an enrollment number.
type SectionRule interface {
	Section(number string) (string, error)
}

// ParityRule assigns sections by the parity of the last digit of the
// enrollment number.
type ParityRule struct {
	Even string
	Odd  string
}

func (r ParityRule) Section(number string) (string, error) {
	if number == "" {
		return "", ErrInvalidEnrollment
	}
	last := number[len(number)-1]
	if last < '0' || last > '9' {
		return "", fmt.Errorf("%w: %q does not end with a digit", ErrInvalidEnrollment, number)
	}
	if (last-'0')%2 == 0 {
		return r.Even, nil
	}
	return r.Odd, nil
}

type Parser struct {
	domain   string
	pattern  *regexp.Regexp
	sections SectionRule
	now      func() time.Time
}

// NewParser returns a parser accepting emails of domain whose local part
// starts with institutePrefix, a two letter branch code and a two digit
// admission year. An empty domain accepts any domain.
func NewParser(domain, institutePrefix string, sections SectionRule, now func() time.Time) *Parser {
	return &Parser{
		domain:   strings.ToLower(strings.TrimPrefix(domain, "@")),
		pattern:  regexp.MustCompile(`^` + regexp.QuoteMeta(strings.ToUpper(institutePrefix)) + `([A-Z]{2})(\d{2})`),
		sections: sections,
		now:      now,
	}
}

func (p *Parser) Parse(email string) (*Enrollment, error) {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnrollment, email)
	}
	if p.domain != "" && strings.ToLower(domain) != p.domain {
		return nil, fmt.Errorf("%w: %q", ErrDomainNotAllowed, domain)
	}

	number := strings.ToUpper(local)
	match := p.pattern.FindStringSubmatch(number)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnrollment, number)
	}

	yearSuffix, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnrollment, number)
	}
	admitYear := 2000 + yearSuffix

	section, err := p.sections.Section(number)
	if err != nil {
		return nil, err
	}

	return &Enrollment{
		Number:    number,
		Branch:    match[1],
		Semester:  fmt.Sprintf("Semester %d", semester(admitYear, p.now())),
		Section:   section,
		AdmitYear: admitYear,
	}, nil
}

// semester counts two terms per year since admission, the odd term
// starting in July.
func semester(admitYear int, now time.Time) int {
	semester := (now.Year() - admitYear) * 2
	if now.Month() >= time.July {
		semester++
	}
	return semester
}
