package envconf

import "fmt"

// Secret is a string that must not appear in logs or CLI output.
type Secret string

const secretMask = "*****"

// String implements fmt.Stringer and masks the value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

// Format implements fmt.Formatter and masks the value for every verb.
func (s Secret) Format(f fmt.State, verb rune) {
	_, _ = f.Write([]byte(s.String()))
}
