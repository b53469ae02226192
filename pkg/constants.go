package dupfilehash

// Engine defaults
const (
	DefaultMinSize        = 1024        // Files smaller than this are never candidates
	DefaultLargeThreshold = 1024 * 1024 // Files at or above this size are sample-hashed
	DefaultSampleSize     = 64 * 1024   // Bytes hashed from each end of a large file
	DefaultHashBuffer     = 16 * 1024   // Read size for full-content hashing
	MaxHashWorkers        = 64
	MaxHashBuffer         = 1 << 30     // Largest read size for full-content hashing
	MaxSampleSize         = 1 << 30     // Largest per-end sample of a large file
)

// Warning stages
const (
	StageTraverse = "traverse"
	StageHash     = "hash"
)

// Debug flags understood by IsDebugEnabled
const (
	DebugScan   = "scan"
	DebugFilter = "filter"
	DebugHash   = "hash"
	DebugGroup  = "group"
)

// Skiplist context for records that carry a fingerprint
const HashedContext = "hashed"

// Files kept in the configuration directory
const (
	ConfigFile = "config"
	IgnoreFile = "ignore"
)

// Report formats
const (
	FormatHuman  = "human"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatFdupes = "fdupes"
)

// iovMax is IOV_MAX on Linux, the most iovecs a single writev accepts
const iovMax = 1024
