package entity

import (
	"fmt"
	"sort"
)

// UploadURLs maps an architecture name to its pre-signed PUT URL.
type UploadURLs map[string]string

// Architectures returns the keys in a stable order.
func (u UploadURLs) Architectures() []string {
	archs := make([]string, 0, len(u))
	for arch := range u {
		archs = append(archs, arch)
	}
	sort.Strings(archs)
	return archs
}

type UploadURLsRequest struct {
	Architectures []string `json:"architectures"`
}

type UploadURLsResponse struct {
	URLs UploadURLs `json:"urls"`
}

// Artifact is a local build output for one architecture.
type Artifact struct {
	Arch string
	Path string
	Size int64
}

// ArtifactFileName follows the {pluginId}-{arch}.tar.gz naming convention.
func ArtifactFileName(pluginID, arch string) string {
	return fmt.Sprintf("%s-%s.tar.gz", pluginID, arch)
}
