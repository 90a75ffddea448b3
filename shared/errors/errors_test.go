package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	notFound := &ErrorWithStatusCode{Message: "thread 1 not found", StatusCode: http.StatusNotFound}

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("get thread: %w", notFound)))
	assert.False(t, IsNotFound(&ErrorWithStatusCode{Message: "boom", StatusCode: http.StatusBadGateway}))
	assert.False(t, IsNotFound(assert.AnError))
	assert.False(t, IsNotFound(nil))
}
