package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestScheduleWindowCheckReportsLookupFailure(t *testing.T) {
	// nothing listens on port 1, so every query fails
	conn, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=signage dbname=signage sslmode=disable connect_timeout=1"), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	err = addScheduleWindowCheck(conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to look up schedule window check")
}
