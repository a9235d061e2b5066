package core

import (
	"errors"
	"testing"
)

func TestValidatePassage(t *testing.T) {
	tests := []struct {
		name    string
		passage *Passage
		wantErr error
	}{
		{
			name: "valid passage",
			passage: &Passage{
				Owner:      "aria",
				Source:     "bio.txt",
				ChunkIndex: 0,
				Contents:   "Aria grew up by the sea.",
			},
			wantErr: nil,
		},
		{
			name: "valid passage with empty vector",
			passage: &Passage{
				Owner:    "aria",
				Source:   "bio.txt",
				Contents: "Not yet embedded.",
				Vector:   nil,
			},
			wantErr: nil,
		},
		{
			name: "valid passage with metadata",
			passage: &Passage{
				Owner:    "aria",
				Source:   "bio.txt",
				Contents: "Tagged passage.",
				Metadata: map[string]string{"creator_name": "Aria"},
			},
			wantErr: nil,
		},
		{
			name:    "nil passage",
			passage: nil,
			wantErr: ErrInvalidPassage,
		},
		{
			name: "empty owner",
			passage: &Passage{
				Source:   "bio.txt",
				Contents: "No owner.",
			},
			wantErr: ErrEmptyOwner,
		},
		{
			name: "empty source",
			passage: &Passage{
				Owner:    "aria",
				Contents: "No source.",
			},
			wantErr: ErrEmptySource,
		},
		{
			name: "empty contents",
			passage: &Passage{
				Owner:  "aria",
				Source: "bio.txt",
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "whitespace contents",
			passage: &Passage{
				Owner:    "aria",
				Source:   "bio.txt",
				Contents: "   \n\t  ",
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "negative chunk index",
			passage: &Passage{
				Owner:      "aria",
				Source:     "bio.txt",
				Contents:   "Valid text.",
				ChunkIndex: -1,
			},
			wantErr: ErrNegativeChunkIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassage(tt.passage)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePassage() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassage() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPassage) {
				t.Errorf("ValidatePassage() error = %v, should wrap ErrInvalidPassage", err)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Owner:  "aria",
				Source: "bio.txt",
				Text:   "Aria grew up by the sea. She became a marine biologist.",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty owner",
			doc: &Document{
				Source: "bio.txt",
				Text:   "Text.",
			},
			wantErr: ErrEmptyOwner,
		},
		{
			name: "empty source",
			doc: &Document{
				Owner: "aria",
				Text:  "Text.",
			},
			wantErr: ErrEmptySource,
		},
		{
			name: "whitespace text",
			doc: &Document{
				Owner:  "aria",
				Source: "bio.txt",
				Text:   "  \n ",
			},
			wantErr: ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
