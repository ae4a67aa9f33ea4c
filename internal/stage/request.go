package stage

import (
	"path/filepath"
)

const (
	// BuildRoot is the build output directory, relative to the working directory.
	BuildRoot = "build/release"

	// ArtifactName is the fixed file name of the compiled game module.
	ArtifactName = "game.dll"

	// RuntimeDirName is the runtime asset directory the game loads modules from.
	RuntimeDirName = "baseq2"
)

// Request describes where one configuration's artifact is read from and written to.
// All paths are derived from Configuration and are relative to the working directory.
type Request struct {
	Configuration   string
	SourcePath      string
	DestinationDir  string
	DestinationPath string
}

// NewRequest builds a Request for the given configuration.
// The configuration is interpolated into the path templates as-is; no sanitization
// is performed.
func NewRequest(configuration string) *Request {
	configDir := filepath.Join(BuildRoot, configuration)
	destDir := filepath.Join(configDir, RuntimeDirName)
	return &Request{
		Configuration:   configuration,
		SourcePath:      filepath.Join(configDir, ArtifactName),
		DestinationDir:  destDir,
		DestinationPath: filepath.Join(destDir, ArtifactName),
	}
}
