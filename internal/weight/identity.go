package weight

// FileID identifies a physical file. Unix hosts fill Dev and Ino; elsewhere
// the cleaned absolute path stands in.
type FileID struct {
	Dev  uint64
	Ino  uint64
	Path string
}
