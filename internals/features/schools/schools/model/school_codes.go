package model

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

/* =========================
   Registration / member codes
========================= */

type CodeKind string

const (
	CodeKindTeacher CodeKind = "teacher"
	CodeKindStudent CodeKind = "student"
)

// MaxCodeAttempts bounds the generate-then-insert loop before giving up.
const MaxCodeAttempts = 5

const (
	codeLetters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultNameCode  = "SCH"
	nameCodeLen      = 3
	nameCodePadRune  = 'X'
	memberCodeIDRune = 4
)

// RandSource is the randomness used for code suffixes. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the process-wide math/rand/v2 generator.
var DefaultRand RandSource = globalRand{}

func (k CodeKind) Prefix() string {
	if k == CodeKindStudent {
		return "STU"
	}
	return "TCH"
}

func ParseCodeKind(s string) (CodeKind, bool) {
	switch CodeKind(strings.ToLower(strings.TrimSpace(s))) {
	case CodeKindTeacher:
		return CodeKindTeacher, true
	case CodeKindStudent:
		return CodeKindStudent, true
	}
	return "", false
}

// nameCode: first three characters of the name, upper-cased, spaces dropped,
// right-padded with X.
func nameCode(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultNameCode
	}
	runes := []rune(name)
	if len(runes) > nameCodeLen {
		runes = runes[:nameCodeLen]
	}
	code := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, string(runes))
	for len([]rune(code)) < nameCodeLen {
		code += string(nameCodePadRune)
	}
	return code
}

// GenerateRegistrationCode builds "<PFX>-<CODE><NNN>-<LLL>".
// Uniqueness is not guaranteed here; the unique index decides.
func GenerateRegistrationCode(schoolName string, kind CodeKind, rnd RandSource) string {
	if rnd == nil {
		rnd = DefaultRand
	}
	digits := fmt.Sprintf("%03d", rnd.IntN(1000))
	var letters strings.Builder
	for i := 0; i < 3; i++ {
		letters.WriteByte(codeLetters[rnd.IntN(len(codeLetters))])
	}
	return fmt.Sprintf("%s-%s%s-%s", kind.Prefix(), nameCode(schoolName), digits, letters.String())
}

// MemberCode is the sequential teacher/student code, e.g. TCH1A2B001.
func MemberCode(kind CodeKind, schoolID uuid.UUID, seq int) string {
	return fmt.Sprintf("%s%s%03d", kind.Prefix(), strings.ToUpper(schoolID.String()[:memberCodeIDRune]), seq)
}
