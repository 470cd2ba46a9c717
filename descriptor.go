package ftsarc

import (
	"path"
	"strconv"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Media types and annotations for archives referenced from OCI manifests.
const (
	// MediaTypeArchive is the media type of a stored archive.
	MediaTypeArchive = "application/vnd.fts.archive.v1"

	// AnnotationCompressor names the codec wrapping the stored archive.
	AnnotationCompressor = "org.fts.archive.compressor"

	// AnnotationFiles is the number of file chunks in the archive.
	AnnotationFiles = "org.fts.archive.files"
)

// Descriptor describes the bytes Store would write: their size and sha256
// digest, with the codec and file count as annotations. The archive name,
// if set, becomes the title annotation.
func (a *Archive) Descriptor() (ocispec.Descriptor, error) {
	data, _, err := a.storedBytes()
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	annotations := map[string]string{
		AnnotationCompressor: a.codec.Name(),
		AnnotationFiles:      strconv.Itoa(a.FileCount()),
	}
	if a.name != "" {
		annotations[ocispec.AnnotationTitle] = path.Base(a.name)
	}
	return ocispec.Descriptor{
		MediaType:   MediaTypeArchive,
		Digest:      digest.FromBytes(data),
		Size:        int64(len(data)),
		Annotations: annotations,
	}, nil
}
