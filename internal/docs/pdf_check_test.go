package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(zap.NewNop())

	t.Run("empty file", func(t *testing.T) {
		err := v.Validate("scan.pdf", nil)
		assert.ErrorContains(t, err, "empty file")
	})

	t.Run("oversized file", func(t *testing.T) {
		err := v.Validate("scan.jpg", make([]byte, maxUploadBytes+1))
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("images pass on extension", func(t *testing.T) {
		for _, name := range []string{"photo.jpg", "photo.JPEG", "photo.png"} {
			assert.NoError(t, v.Validate(name, []byte{0xff, 0xd8}), name)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		err := v.Validate("macro.docx", []byte("PK"))
		assert.ErrorContains(t, err, "unsupported file type")
	})

	t.Run("no extension", func(t *testing.T) {
		err := v.Validate("README", []byte("x"))
		assert.ErrorContains(t, err, "unsupported file type")
	})

	t.Run("garbage pdf rejected", func(t *testing.T) {
		err := v.Validate("scan.pdf", []byte("not a pdf at all"))
		assert.ErrorContains(t, err, "unreadable PDF")
	})
}
