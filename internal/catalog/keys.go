package catalog

import "strings"

// Characters the storage backend cannot carry in a path segment.
var keyReplacer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"/", "_",
	"[", "_",
	"]", "_",
)

// Normalize converts a raw title into its storage key: whitespace is
// trimmed and internal runs collapsed to one space, path-hostile
// characters are replaced with underscores, case is preserved so the key
// doubles as the displayed title. Idempotent.
func Normalize(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	return keyReplacer.Replace(collapsed)
}

// DisplayName is the lowercased, separator-to-space form of a key used
// for case-insensitive matching. The key itself keeps the original casing.
func DisplayName(key string) string {
	name := strings.ReplaceAll(key, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	return strings.ToLower(name)
}
