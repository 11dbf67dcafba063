package model

import "testing"

func TestKindForFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		wantKind FileKind
		wantOK   bool
	}{
		{"audio", "song.mp3", KindAudio, true},
		{"video", "clip.mp4", KindVideo, true},
		{"image", "photo.jpg", KindImage, true},
		{"document", "notes.pdf", KindDocument, true},
		{"uppercase extension", "PHOTO.JPG", KindImage, true},
		{"mixed case", "Report.DocX", KindDocument, true},
		{"multiple dots", "archive.backup.png", KindImage, true},
		{"executable rejected", "setup.exe", "", false},
		{"no extension", "README", "", false},
		{"trailing dot", "strange.", "", false},
		{"dotfile only", ".gitignore", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kind, ok := KindForFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("KindForFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Errorf("KindForFilename(%q) kind = %q, want %q", tt.filename, kind, tt.wantKind)
			}
		})
	}
}
