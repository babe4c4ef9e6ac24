package tag

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Wildcard is the reserved tag that addresses every tracked object.
// The Registry adds every registered object to the wildcard bucket.
const Wildcard = "*"

// nonCascadingPrefix marks tags that children do not inherit from a
// stopped parent.
const nonCascadingPrefix = "_"

// Untagged is the fallback tag assigned to routines added without any
// user tag. It is non-cascading so it never leaks onto promoted children.
const Untagged = "_untagged"

// ErrInvalid is wrapped by every tag validation failure.
var ErrInvalid = errors.New("invalid tag")

// Validate checks that a tag is well-formed: non-empty and not all
// whitespace. Malformed tags indicate a caller bug and are never coerced.
func Validate(t string) error {
	if t == "" {
		return fmt.Errorf("%w: empty string", ErrInvalid)
	}
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: blank string %q", ErrInvalid, t)
	}
	return nil
}

// Canonical returns the NFC-normalized form of a tag.
// All Registry buckets are keyed by canonical form.
func Canonical(t string) string {
	return norm.NFC.String(t)
}

// Cascades reports whether children inherit this tag from a stopped parent.
// Tags with the "_" prefix (and the wildcard) do not cascade.
func Cascades(t string) bool {
	return t != Wildcard && !strings.HasPrefix(t, nonCascadingPrefix)
}

// Taggable is anything the Registry can track. Routines implement it, but
// so can plain listener objects that only intercept messages.
type Taggable interface {
	Tags() []string
}
