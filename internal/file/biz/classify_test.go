package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		wantType FileType
		wantExt  string
	}{
		{"photo.png", TypeImage, "png"},
		{"clip.svg", TypeImage, "svg"},
		{"holiday.JPG", TypeImage, "jpg"},
		{"report.pdf", TypeDocument, "pdf"},
		{"notes.md", TypeDocument, "md"},
		{"numbers.xlsx", TypeDocument, "xlsx"},
		{"movie.mp4", TypeVideo, "mp4"},
		{"song.mp3", TypeAudio, "mp3"},
		{"archive.zip", TypeOther, "zip"},
		{"binary.bin", TypeOther, "bin"},
		{"noextension", TypeOther, ""},
		{"weird.name.tar.gz", TypeOther, "gz"},
		{".gitignore", TypeOther, "gitignore"},
	}

	for _, tc := range cases {
		gotType, gotExt := Classify(tc.name)
		assert.Equal(t, tc.wantType, gotType, "type of %q", tc.name)
		assert.Equal(t, tc.wantExt, gotExt, "extension of %q", tc.name)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		gotType, gotExt := Classify("photo.png")
		assert.Equal(t, TypeImage, gotType)
		assert.Equal(t, "png", gotExt)
	}
}
