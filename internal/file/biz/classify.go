package biz

import (
	"path/filepath"
	"strings"
)

// FileType is the coarse classification of an uploaded file
type FileType string

const (
	TypeImage    FileType = "image"
	TypeVideo    FileType = "video"
	TypeAudio    FileType = "audio"
	TypeDocument FileType = "document"
	TypeOther    FileType = "other"
)

var extensionTypes = map[string]FileType{
	// image
	"jpg": TypeImage, "jpeg": TypeImage, "png": TypeImage, "gif": TypeImage,
	"bmp": TypeImage, "svg": TypeImage, "webp": TypeImage, "ico": TypeImage,
	// video
	"mp4": TypeVideo, "avi": TypeVideo, "mov": TypeVideo, "mkv": TypeVideo,
	"webm": TypeVideo, "flv": TypeVideo, "wmv": TypeVideo,
	// audio
	"mp3": TypeAudio, "wav": TypeAudio, "ogg": TypeAudio, "flac": TypeAudio,
	"m4a": TypeAudio, "aac": TypeAudio,
	// document
	"pdf": TypeDocument, "doc": TypeDocument, "docx": TypeDocument,
	"txt": TypeDocument, "md": TypeDocument, "rtf": TypeDocument,
	"xls": TypeDocument, "xlsx": TypeDocument, "csv": TypeDocument,
	"ppt": TypeDocument, "pptx": TypeDocument,
}

// Classify maps a filename to its coarse type and lowercase extension.
// It is deterministic and looks only at the name, never the content.
func Classify(name string) (FileType, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return TypeOther, ""
	}

	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return TypeOther, ext
}
