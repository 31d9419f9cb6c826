package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Validator_Check(t *testing.T) {
	t.Run("🟢passing check records nothing", func(t *testing.T) {
		v := NewValidator()
		v.Check(true, "key", "error message")

		assert.False(t, v.HasErrors())
		assert.Empty(t, v.FirstError())
	})

	t.Run("🔴failing check records the message", func(t *testing.T) {
		v := NewValidator()
		v.Check(false, "key", "error message")

		assert.True(t, v.HasErrors())
		assert.Equal(t, map[string]any{"key": "error message"}, v.Errors)
	})
}

func Test_Validator_CheckError(t *testing.T) {
	t.Run("🟢nil error records nothing", func(t *testing.T) {
		v := NewValidator()
		v.CheckError(nil, "key", "")

		assert.False(t, v.HasErrors())
	})

	t.Run("🔴falls back to the error text when no message is given", func(t *testing.T) {
		v := NewValidator()
		v.CheckError(errors.New("underlying failure"), "key", "")

		assert.Equal(t, "underlying failure", v.FirstError())
	})
}

func Test_Validator_FirstError(t *testing.T) {
	t.Run("🟢returns the earliest failed check", func(t *testing.T) {
		v := NewValidator()
		v.Check(false, "first", "first message")
		v.Check(false, "second", "second message")

		assert.Equal(t, "first message", v.FirstError())
	})

	t.Run("🟢later write to the same key keeps its position", func(t *testing.T) {
		v := NewValidator()
		v.AddError("first", "first message")
		v.AddError("first", "replaced message")
		v.AddError("second", "second message")

		assert.Equal(t, "replaced message", v.FirstError())
	})
}
