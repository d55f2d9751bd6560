package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	id := NewPageID()
	require.True(t, strings.HasPrefix(id, PrefixPage+"_"), id)
	assert.NoError(t, Validate(id, PrefixPage))
	assert.Error(t, Validate(id, PrefixElement))
	assert.Error(t, Validate("not an id", PrefixPage))

	assert.NotEqual(t, NewElementID(), NewElementID())
}
