package roster

import (
	"strings"

	"github.com/okian/rosterquiz/internal/domain/dedupe"
)

// Suggest returns the candidates whose names contain partial, compared
// case-insensitively, in candidate order. A blank partial yields nil.
// limit <= 0 returns every match.
func Suggest(candidates []string, partial string, limit int) []string {
	needle := dedupe.Normalize(partial)
	if needle == "" {
		return nil
	}

	var out []string
	for _, c := range candidates {
		if !strings.Contains(dedupe.Normalize(c), needle) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
