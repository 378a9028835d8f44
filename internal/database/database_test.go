package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectWithoutURL(t *testing.T) {
	db, err := Connect("")
	assert.NoError(t, err)
	assert.Nil(t, db)
	assert.NoError(t, Migrate(nil))
}
