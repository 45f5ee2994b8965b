package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// reservedNames are the self-aliases a rectangle resolves to its own edges,
// plus the ambient names an element scope reserves.
var reservedNames = map[string]bool{
	"x": true, "y": true,
	"left": true, "right": true, "top": true, "bottom": true,
	"width": true, "height": true,
	"parent": true,
}

// keywords cannot be used as bare identifiers in expressions.
var keywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"false": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "let": true, "loop": true, "package": true, "namespace": true,
	"null": true, "return": true, "true": true, "var": true, "void": true,
	"while": true,
}

// componentNameRegex matches names usable as expression symbols.
var componentNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateComponentName validates a component name for use in layout files.
//
// Names become symbols in edge expressions (e.g. "sidebar.right"), so they
// must be plain identifiers and must not shadow a reserved edge name:
//   - No empty names
//   - Maximum length of 128 characters
//   - Identifier characters only
//   - Not one of x, y, left, right, top, bottom, width, height, parent
//   - Not an expression keyword such as "in" or "true"
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "component name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "component name too long (max 128 characters)")
	}

	if !componentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid component name: %q", name)
	}

	if reservedNames[name] {
		return New(ErrCodeInvalidInput, "component name %q is reserved", name)
	}

	if keywords[name] {
		return New(ErrCodeInvalidInput, "component name %q is a keyword", name)
	}

	return nil
}

// ValidatePath validates a file path supplied over the HTTP API.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
