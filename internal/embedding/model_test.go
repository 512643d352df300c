package embedding

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorColumnMatchesDim(t *testing.T) {
	f, ok := reflect.TypeOf(ContentEmbedding{}).FieldByName("Embedding")
	require.True(t, ok)
	assert.Contains(t, f.Tag.Get("gorm"), fmt.Sprintf("vector(%d)", Dim))
}
