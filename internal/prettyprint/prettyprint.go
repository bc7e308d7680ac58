// Package prettyprint renders value lists as human-readable prose for error
// messages.
package prettyprint

import (
	"fmt"
	"strings"
)

// List renders elements as a quoted, comma-separated prose list:
// 'a', 'b', and 'c'. Two elements join with "and" only; a single element is
// just quoted.
func List(elements []string) string {
	quoted := make([]string, len(elements))
	for i, e := range elements {
		quoted[i] = fmt.Sprintf("'%s'", e)
	}

	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " and " + quoted[1]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + ", and " + quoted[len(quoted)-1]
	}
}
