package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeImages(t *testing.T) {
	assert.Nil(t, DecodeImages(nil))
	assert.Equal(t, []any{"a", "b"}, DecodeImages([]byte(`["a","b"]`)))
	assert.Equal(t, "a.jpg", DecodeImages([]byte(`"a.jpg"`)))
	assert.Equal(t, []any{"a", "b"}, DecodeImages([]byte(`"[\"a\",\"b\"]"`)))
	assert.Equal(t, "[broken", DecodeImages([]byte(`"[broken"`)))
	assert.Equal(t, "not json", DecodeImages([]byte(`not json`)))
}
