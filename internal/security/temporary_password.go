package security

import (
	"crypto/rand"
	"math/big"
)

// Look-alike characters (I, l, O, 0, 1) are left out so passwords read
// back over the phone survive.
const (
	upperLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters = "abcdefghijkmnopqrstuvwxyz"
	digits       = "23456789"

	// TemporaryPasswordAlphabet is every character a temporary password may hold.
	TemporaryPasswordAlphabet = upperLetters + lowerLetters + digits

	minTemporaryPasswordLength = 8
)

// TemporaryPassword returns a crypto-random password of at least eight
// characters holding an upper-case letter, a lower-case letter and a digit.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	password := make([]byte, 0, length)
	for _, class := range []string{upperLetters, lowerLetters, digits} {
		char, err := pick(class)
		if err != nil {
			return "", err
		}
		password = append(password, char)
	}
	for len(password) < length {
		char, err := pick(TemporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		password = append(password, char)
	}

	// Fisher-Yates so the guaranteed classes do not always lead.
	for index := len(password) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		password[index], password[swap] = password[swap], password[index]
	}
	return string(password), nil
}

func pick(alphabet string) (byte, error) {
	index, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[index], nil
}

func randomIndex(n int) (int, error) {
	value, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(value.Int64()), nil
}
