package kernel

import (
	"fmt"

	"coldchain/internal/pkg/errs"
)

// RfidLength is the exact length of the tag codes physically attached to
// reusable packaging units.
const RfidLength = 24

// Rfid is a value object wrapping the globally-unique 24-character tag code
// that identifies one physical inventory unit. Units are always addressed by
// this code at the operation boundary; operators produce it by scanning the
// tag, never by typing identifiers.
//
// The zero value is invalid; construct through NewRfid.
//
// Example usage:
//
//	code, err := kernel.NewRfid("TIC05L00000000000000A9F3")
//	if err != nil {
//	    // wrong length or illegal characters
//	}
type Rfid struct {
	code string
}

// NewRfid validates and wraps a scanned tag code.
// The code must be exactly RfidLength characters of ASCII letters and digits.
func NewRfid(code string) (Rfid, error) {
	if code == "" {
		return Rfid{}, errs.NewValueIsRequiredError("rfid")
	}
	if len(code) != RfidLength {
		return Rfid{}, errs.NewValueIsInvalidErrorWithCause("rfid",
			fmt.Errorf("code %q has %d characters, expected %d", code, len(code), RfidLength))
	}
	for _, c := range code {
		if !isRfidChar(c) {
			return Rfid{}, errs.NewValueIsInvalidErrorWithCause("rfid",
				fmt.Errorf("code %q contains illegal character %q", code, c))
		}
	}
	return Rfid{code: code}, nil
}

func isRfidChar(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	}
	return false
}

// String returns the tag code.
func (r Rfid) String() string {
	return r.code
}

// IsEqual compares two tag codes for equality.
func (r Rfid) IsEqual(other Rfid) bool {
	return r.code == other.code
}

// Validate checks that the Rfid was constructed through NewRfid.
func (r Rfid) Validate() error {
	if r.code == "" {
		return errs.NewValueIsRequiredError("rfid must be created via NewRfid")
	}
	return nil
}
