package content

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestListOptionsNormalized(t *testing.T) {
	tests := []struct {
		name      string
		opts      ListOptions
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{"defaults", ListOptions{}, 1, 20, "created_at desc"},
		{"negative page", ListOptions{Page: -3}, 1, 20, "created_at desc"},
		{"limit clamped to cap", ListOptions{Limit: 1000}, 1, 100, "created_at desc"},
		{"valid sort asc", ListOptions{SortBy: "title", Order: "asc"}, 1, 20, "title asc"},
		{"unknown sort falls back", ListOptions{SortBy: "password_hash"}, 1, 20, "created_at desc"},
		{"unknown order falls back", ListOptions{Order: "sideways"}, 1, 20, "created_at desc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, order := tt.opts.normalized()
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(45, 2, 20)
	assert.Equal(t, int64(45), p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.CurrentPage)

	p = paginate(40, 1, 20)
	assert.Equal(t, 2, p.TotalPages)

	p = paginate(0, 1, 20)
	assert.Equal(t, 0, p.TotalPages)
}

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{" Go ", "go", "", "API", "api"})
	assert.Equal(t, pq.StringArray{"go", "api"}, got)
}

func TestInCollection(t *testing.T) {
	c := &Content{CollectionIDs: pq.Int64Array{3, 7}}
	assert.True(t, c.InCollection(7))
	assert.False(t, c.InCollection(5))
}
