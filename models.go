package modsync

// Mapping overrides the remote identifier of a mod.
type Mapping struct {
	// ExpectedName is the identity declared by the archive metadata.
	ExpectedName string `json:"ExpectedName"`

	// APIName is the project identifier on the remote service.
	APIName string `json:"ApiName"`
}

// Mod is a single archive on its way through the install pipeline.
type Mod struct {
	// Archive is the file name in the source directory.
	Archive string

	// ID is the identity declared by the archive metadata.
	// Empty if the archive could not be identified.
	ID string

	// RemoteID is the project identifier after mapping.
	RemoteID string
}
