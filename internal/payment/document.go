package payment

import "strings"

// cleanDocument strips every non-digit character from a raw document number.
func cleanDocument(raw string) string {
	var b strings.Builder

	b.Grow(len(raw))

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// allSameDigit reports whether every byte of a digit string is identical.
// Sequences like "111.111.111-11" satisfy the checksum but are not valid
// documents.
func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}

	return true
}

// IsValidCPF validates an individual document number (CPF) by its two
// check digits. Formatting characters are ignored.
func IsValidCPF(raw string) bool {
	cpf := cleanDocument(raw)
	if len(cpf) != 11 || allSameDigit(cpf) {
		return false
	}

	for i := 9; i < 11; i++ {
		sum := 0
		for j := 0; j < i; j++ {
			sum += int(cpf[j]-'0') * ((i + 1) - j)
		}

		check := ((sum * 10) % 11) % 10
		if int(cpf[i]-'0') != check {
			return false
		}
	}

	return true
}

// cnpjWeights is the weight vector for the first CNPJ check digit; the
// second digit uses the same vector prefixed with 6.
var cnpjWeights = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// IsValidCNPJ validates a corporate document number (CNPJ) by its two
// check digits. Formatting characters are ignored.
func IsValidCNPJ(raw string) bool {
	cnpj := cleanDocument(raw)
	if len(cnpj) != 14 || allSameDigit(cnpj) {
		return false
	}

	secondWeights := append([]int{6}, cnpjWeights...)

	for i, weights := range [][]int{cnpjWeights, secondWeights} {
		sum := 0
		for j, w := range weights {
			sum += int(cnpj[j]-'0') * w
		}

		check := 11 - sum%11
		if check >= 10 {
			check = 0
		}

		if int(cnpj[12+i]-'0') != check {
			return false
		}
	}

	return true
}

// IsValidDocument dispatches document validation by customer type.
// Unknown types are always invalid.
func IsValidDocument(kind CustomerType, raw string) bool {
	switch kind {
	case CustomerIndividual:
		return IsValidCPF(raw)
	case CustomerCorporate:
		return IsValidCNPJ(raw)
	default:
		return false
	}
}
