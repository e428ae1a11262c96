package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

func TestPredicateMatch(t *testing.T) {
	fields := Fields{"dni": "AB12", "n": float64(7)}

	assert.True(t, Equals("dni", "AB12").Match(fields))
	assert.False(t, Equals("dni", "ab12").Match(fields))
	assert.True(t, EqualsFold("dni", "ab12").Match(fields))
	assert.True(t, Equals("n", "7").Match(fields))
	assert.False(t, Equals("missing", "").Match(fields))
}

func TestProject(t *testing.T) {
	fields := Fields{"a": 1, "b": 2}

	assert.Equal(t, Fields{"a": 1}, Project(fields, "a", "zz"))
	all := Project(fields)
	all["c"] = 3
	assert.Len(t, fields, 2)
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("find attendee: %w", Unavailable("findOne", cause))

	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, IsUnavailable(model.ErrNotFound))
}
