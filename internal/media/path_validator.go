package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go-videotube/pkg/apierror"
)

// keyResolver maps object keys onto files below a root directory and
// refuses anything that would escape it.
type keyResolver struct {
	rootAbs string
}

func newKeyResolver(root string) (*keyResolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}

	return &keyResolver{rootAbs: rootAbs}, nil
}

func (v *keyResolver) RootAbs() string {
	return v.rootAbs
}

func (v *keyResolver) Resolve(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if normalized == "" || normalized == "/" {
		return "", apierror.BadRequest("media key is required")
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", apierror.BadRequest("media key contains invalid characters", key)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.BadRequest("media key escapes the media root", key)
		}
	}

	cleanRel := filepath.Clean(strings.TrimPrefix(normalized, "/"))
	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !isWithinRoot(v.rootAbs, resolvedAbs) || resolvedAbs == v.rootAbs {
		return "", apierror.BadRequest("media key escapes the media root", key)
	}

	return resolvedAbs, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
