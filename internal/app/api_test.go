package app

import (
	"testing"
	"time"

	"github.com/jaennil/guide_helper/backend/maps/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestTileTimeoutFitsWriteTimeout(t *testing.T) {
	server := config.Server{WriteTimeout: 15 * time.Second}

	got := tileTimeout(server, 10*time.Second)

	assert.Equal(t, 3*time.Second, got)
	assert.Less(t, viewTiles*got, server.WriteTimeout)
}

func TestTileTimeoutKeepsShorterFetchTimeout(t *testing.T) {
	got := tileTimeout(config.Server{WriteTimeout: time.Minute}, 2*time.Second)

	assert.Equal(t, 2*time.Second, got)
}

func TestTileTimeoutWithoutWriteTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, tileTimeout(config.Server{}, 10*time.Second))
}
