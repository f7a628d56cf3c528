package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(gorm.ErrRecordNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("get day: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFoundError(errors.New("connection reset")))
	assert.False(t, IsNotFoundError(nil))
}
