package model

type (
	// ImageInfo describes an image known to the local engine.
	ImageInfo struct {
		ID         string `json:"id"`
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
		Size       string `json:"size"`
		Created    string `json:"created"`
	}

	// RegistryImage describes one repository:tag held by a remote
	// registry, aggregated from its manifest and config blob.
	RegistryImage struct {
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
		Size       string `json:"size"`
		Created    string `json:"created"`
	}
)
