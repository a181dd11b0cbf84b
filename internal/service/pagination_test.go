package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 4, ParsePage(" 4 "))
}

func TestPaginate(t *testing.T) {
	p := Paginate(2, 17, 8)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 8, p.Offset())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	last := Paginate(99, 17, 8)
	assert.Equal(t, 3, last.Page, "out of range page resolves to the last page")
	assert.False(t, last.HasNext())

	empty := Paginate(5, 0, 8)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 0, empty.Offset())
}
