package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recallit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("bio.txt_0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalPassage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		passage *core.Passage
	}{
		{
			name: "full passage",
			passage: &core.Passage{
				Id:         core.IDFromContent("bio.txt_0"),
				Owner:      "aria",
				Source:     "bio.txt",
				ChunkIndex: 0,
				Contents:   "Aria grew up by the sea.",
				WordCount:  6,
				CharCount:  24,
				TokenCount: 8,
				Vector:     []float32{0.1, -0.5, 0.25, 1},
				Metadata:   map[string]string{"lang": "en", "tag": "bio"},
				InsertedAt: now,
			},
		},
		{
			name: "unembedded passage",
			passage: &core.Passage{
				Id:         core.IDFromContent("notes.md_2"),
				Owner:      "kenji",
				Source:     "notes.md",
				ChunkIndex: 2,
				Contents:   "Pending embedding.",
				WordCount:  2,
				CharCount:  18,
				InsertedAt: now,
			},
		},
		{
			name: "unicode contents",
			passage: &core.Passage{
				Id:         1,
				Owner:      "aria",
				Source:     "hindi.txt",
				ChunkIndex: 0,
				Contents:   "नमस्ते, yeh ek passage hai.",
				WordCount:  5,
				CharCount:  27,
				InsertedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPassage(tt.passage)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalPassage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.passage.Id, decoded.Id)
			assert.Equal(t, tt.passage.Owner, decoded.Owner)
			assert.Equal(t, tt.passage.Source, decoded.Source)
			assert.Equal(t, tt.passage.ChunkIndex, decoded.ChunkIndex)
			assert.Equal(t, tt.passage.Contents, decoded.Contents)
			assert.Equal(t, tt.passage.WordCount, decoded.WordCount)
			assert.Equal(t, tt.passage.CharCount, decoded.CharCount)
			assert.Equal(t, tt.passage.TokenCount, decoded.TokenCount)
			assert.Equal(t, tt.passage.Vector, decoded.Vector)
			assert.Equal(t, tt.passage.Metadata, decoded.Metadata)
			assert.True(t, tt.passage.InsertedAt.Equal(decoded.InsertedAt))
		})
	}
}

func TestUnmarshalPassage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"garbage data", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalPassage(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}
