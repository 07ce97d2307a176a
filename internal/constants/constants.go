// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Hashing constants
const (
	// HashBitZero and HashBitOne are the only characters a channelled average hash contains
	HashBitZero = '0'
	HashBitOne  = '1'

	// MaxDistancePercent is the largest possible Hamming distance between two hashes, in percent
	MaxDistancePercent = 100.0
)

// Export constants
const (
	// DefaultJSONReport is the report file name suggested in help texts
	DefaultJSONReport = "groups.json"

	// ExportDirPerm is the permission used when creating export directories
	ExportDirPerm = 0o755
)

// Web constants
const (
	// DefaultRequestTimeoutSeconds bounds a single API request
	DefaultRequestTimeoutSeconds = 30
)

// SupportedExtensions lists the image file extensions picked up from an input folder.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}
