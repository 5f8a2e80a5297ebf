package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("phone %s not found", "x")))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("create: %w", Validation("bad"))))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
	assert.False(t, Is(nil, KindInternal))
	assert.True(t, Is(Conflict("dup"), KindConflict))
	assert.Equal(t, "phone x not found", NotFound("phone %s not found", "x").Error())
}
