package scanner

import "time"

// DefaultMaxFileSize is the largest file the scanner will hand to the
// chunker (1 MB). Bigger files are almost never hand-written source.
const DefaultMaxFileSize = 1 * 1024 * 1024

// FileInfo describes a file eligible for indexing.
type FileInfo struct {
	// Path is relative to the scan root, slash-separated.
	Path string
	// AbsPath is the absolute filesystem path.
	AbsPath string
	// Size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
}

// SkipReason classifies why a file was excluded from the scan.
type SkipReason string

const (
	SkipReasonExtension  SkipReason = "extension"
	SkipReasonBinary     SkipReason = "binary"
	SkipReasonTooLarge   SkipReason = "too_large"
	SkipReasonUnreadable SkipReason = "unreadable"
)

// SkippedFile records a per-file skip. Skips never abort a scan.
type SkippedFile struct {
	Path   string
	Reason SkipReason
}

// ScanResult is one streamed scan event: exactly one of File, Skipped, or
// Err is set.
type ScanResult struct {
	File    *FileInfo
	Skipped *SkippedFile
	Err     error
}

// ScanOptions configures a scan.
type ScanOptions struct {
	// RootDir is the directory to scan. Defaults to ".".
	RootDir string
	// Extensions is the allowlist of file extensions (without the dot).
	// Empty means DefaultExtensions.
	Extensions []string
	// ExcludePatterns are extra gitignore-style exclusions.
	ExcludePatterns []string
	// MaxFileSize in bytes; files above it are skipped.
	// Defaults to DefaultMaxFileSize.
	MaxFileSize int64
	// RespectGitignore enables .gitignore handling.
	RespectGitignore bool
	// FollowSymlinks enables following symbolic links.
	FollowSymlinks bool
}

// DefaultExtensions is the set of source-file extensions indexed when no
// allowlist is configured.
var DefaultExtensions = []string{
	"go", "rs", "py", "js", "jsx", "ts", "tsx",
	"c", "h", "cpp", "hpp", "cc", "java", "kt", "swift",
	"rb", "php", "cs", "scala", "sh", "sql",
	"md", "txt", "toml", "yaml", "yml", "json", "html", "css",
}
