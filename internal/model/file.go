package model

import (
	"strings"
	"time"
)

// FileKind classifies an upload by its filename extension.
type FileKind string

const (
	KindAudio    FileKind = "audio"
	KindVideo    FileKind = "video"
	KindImage    FileKind = "image"
	KindDocument FileKind = "document"
)

// fileKinds maps lower-case extensions (without the dot) to their kind.
// Anything not listed here is rejected at upload time.
var fileKinds = map[string]FileKind{
	// audio
	"mp3": KindAudio, "wav": KindAudio, "flac": KindAudio,
	"aac": KindAudio, "ogg": KindAudio, "m4a": KindAudio,
	// video
	"mp4": KindVideo, "mkv": KindVideo, "avi": KindVideo,
	"mov": KindVideo, "webm": KindVideo, "wmv": KindVideo,
	// image
	"jpg": KindImage, "jpeg": KindImage, "png": KindImage,
	"gif": KindImage, "bmp": KindImage, "webp": KindImage, "svg": KindImage,
	// document
	"pdf": KindDocument, "doc": KindDocument, "docx": KindDocument,
	"txt": KindDocument, "rtf": KindDocument, "odt": KindDocument,
	"xls": KindDocument, "xlsx": KindDocument, "csv": KindDocument,
	"ppt": KindDocument, "pptx": KindDocument, "md": KindDocument,
}

// KindForFilename returns the file kind for the text after the last dot
// in name, matched case-insensitively. A name without a dot, or with an
// extension outside the allow list, yields ok == false.
func KindForFilename(name string) (FileKind, bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return "", false
	}
	kind, ok := fileKinds[strings.ToLower(name[idx+1:])]
	return kind, ok
}

// File is the leaf level of the tree. Payload holds the raw bytes; list
// endpoints carry metadata only and leave Payload nil.
type File struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Payload     []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	Kind        FileKind  `json:"kind"`
	Description string    `json:"description,omitempty"`
	Size        int64     `json:"size"`
	PersonID    int64     `json:"person_id"`
	CreatedAt   time.Time `json:"created_at"`
}
