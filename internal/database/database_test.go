package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertPlaceholders(t *testing.T) {
	t.Run("postgres passes through", func(t *testing.T) {
		SetDriver("postgres")
		q := "SELECT id FROM tasks WHERE project_id = $1 AND status = $2"
		assert.Equal(t, q, ConvertPlaceholders(q))
	})

	t.Run("mysql rewrites numbered placeholders", func(t *testing.T) {
		SetDriver("mysql")
		defer SetDriver("postgres")

		assert.Equal(t,
			"SELECT id FROM tasks WHERE project_id = ? AND status = ?",
			ConvertPlaceholders("SELECT id FROM tasks WHERE project_id = $1 AND status = $2"))
	})

	t.Run("multi-digit placeholders", func(t *testing.T) {
		SetDriver("mysql")
		defer SetDriver("postgres")

		assert.Equal(t,
			"UPDATE t SET a = ?, b = ? WHERE id = ?",
			ConvertPlaceholders("UPDATE t SET a = $9, b = $10 WHERE id = $11"))
	})

	t.Run("dollar without digit untouched", func(t *testing.T) {
		SetDriver("mysql")
		defer SetDriver("postgres")

		assert.Equal(t, "SELECT '$' FROM dual", ConvertPlaceholders("SELECT '$' FROM dual"))
	})

	t.Run("mariadb counts as mysql", func(t *testing.T) {
		SetDriver("mariadb")
		defer SetDriver("postgres")
		assert.True(t, IsMySQL())
	})
}
