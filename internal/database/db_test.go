package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/car-pooling/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{User: "pool", Host: "mysql", Port: "3306", Name: "car_pooling"}
	assert.Equal(t, "pool@tcp(mysql:3306)/car_pooling?charset=utf8mb4&parseTime=true&loc=UTC", DSN(cfg))

	cfg.Pass = "secret"
	assert.Equal(t, "pool:secret@tcp(mysql:3306)/car_pooling?charset=utf8mb4&parseTime=true&loc=UTC", DSN(cfg))
}
