// Package era names the three visual themes the portfolio can be shown in.
package era

import (
	"fmt"
	"strings"
)

// Era is one of the mutually exclusive themes.
type Era string

const (
	Retro  Era = "RETRO"
	Modern Era = "MODERN"
	Future Era = "FUTURE"
)

// All lists the eras in navigation order.
var All = []Era{Retro, Modern, Future}

// Parse accepts any casing of an era name.
func Parse(s string) (Era, error) {
	e := Era(strings.ToUpper(strings.TrimSpace(s)))
	switch e {
	case Retro, Modern, Future:
		return e, nil
	}
	return "", fmt.Errorf("unknown era %q", s)
}

func (e Era) String() string { return string(e) }
