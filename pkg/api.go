package dupfilehash

// This file holds the small helpers the CLI uses to configure the package

// InitDebugFlags initialises debug flags - for CLI compatibility
func InitDebugFlags(flagsStr string) {
	if flagsStr != "" {
		SetDebugFlags(flagsStr)
	}
}

// ConfigureLogging applies a verbose section to the package logger
func ConfigureLogging(vc *VerboseConfig) {
	if vc == nil {
		return
	}
	SetVerboseLevel(vc.Level)
	InitDebugFlags(vc.Debug)
	LogDebugFlags()
}

// LogDebugFlags logs the current debug flag status
func LogDebugFlags() {
	if globalVerboseLevel > 0 && len(debugFlags) > 0 {
		VerboseLog(1, "Debug flags initialised: %v", debugFlags)
	}
}

// GetDebugEnabled returns whether a debug flag is enabled - public alternative to IsDebugEnabled
func GetDebugEnabled(flag string) bool {
	return IsDebugEnabled(flag)
}

// GetVerbose returns the current verbose level - public alternative
func GetVerbose() int {
	return GetVerboseLevel()
}
