package codec

import "image"

// ArchiveReader gives access to the files of an opened package.
type ArchiveReader interface {
	List() []string
	Contains(name string) bool
	Read(name string) ([]byte, error)
}

// ArchiveWriter collects files and produces the final archive bytes.
type ArchiveWriter interface {
	Write(name string, data []byte) error
	Bytes() ([]byte, error)
}

// ImageCodec decodes texture images and encodes them back to PNG.
type ImageCodec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image) ([]byte, error)
}

// Archives opens and creates archives.
type Archives interface {
	Open(data []byte) (ArchiveReader, error)
	Create() ArchiveWriter
}

// archiveSource adapts an archive to an ImageSource.
func archiveSource(a ArchiveReader) ImageSource {
	return func(name string) ([]byte, bool) {
		if !a.Contains(name) {
			return nil, false
		}
		data, err := a.Read(name)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}
