// Package glob compiles shell-style glob patterns into per-component segments
// and matches them against slash-separated paths.
//
// Supported syntax is '*' (any run of characters inside one path component),
// '?' (one character), '[...]' character classes with ranges and '!' or '^'
// negation, and '**' as a whole component matching zero or more components.
// Besides full matches, a compiled pattern can report whether anything below
// a directory could still match, which lets a walker prune whole subtrees.
package glob
