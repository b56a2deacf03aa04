package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/users"
)

func TestMemoryDirectory(t *testing.T) {
	t.Parallel()

	dir := users.NewMemoryDirectory()
	dir.Put("u1", users.Contact{Email: "a@example.com", Name: "Asha", EmailEnabled: true})

	t.Run("known user", func(t *testing.T) {
		t.Parallel()
		c, err := dir.Contact(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", c.Email)
		assert.True(t, c.EmailEnabled)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := dir.Contact(context.Background(), "missing")
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("func adapter", func(t *testing.T) {
		t.Parallel()
		var d users.Directory = users.DirectoryFunc(func(_ context.Context, id string) (users.Contact, error) {
			return users.Contact{Name: id}, nil
		})
		c, err := d.Contact(context.Background(), "u2")
		require.NoError(t, err)
		assert.Equal(t, "u2", c.Name)
	})
}
