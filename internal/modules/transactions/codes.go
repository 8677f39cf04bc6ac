package transactions

import (
	"time"

	"github.com/google/uuid"
)

// codeLayout is the UTC timestamp part of a transaction code
const codeLayout = "2006-01-02T15:04:05"

// CodeGenerator issues transaction codes of the form
// "2020-04-20T04:20:00-1a2b3c4d": creation time at second precision
// followed by eight random hex digits.
type CodeGenerator struct {
	now    func() time.Time
	suffix func() string
}

// NewCodeGenerator creates a generator using the wall clock
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{
		now:    time.Now,
		suffix: func() string { return uuid.NewString()[:8] },
	}
}

// Next returns a new code and the creation time it encodes
func (g *CodeGenerator) Next() (string, time.Time) {
	at := g.now().UTC()
	return at.Format(codeLayout) + "-" + g.suffix(), at
}
