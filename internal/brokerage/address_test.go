package brokerage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/brokerage/internal/models"
)

func TestAddressService_CreateForAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		addr := testAddress()
		id, err := svc.addresses.CreateForAccount(ctx, accountID, &addr)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, "350 Fifth Avenue", found.Street)

		// The account now references the new address
		account, err := svc.accounts.FindByID(ctx, accountID)
		require.NoError(t, err)
		require.NotNil(t, account.AddressID)
		assert.Equal(t, id, *account.AddressID)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := newTestServices()
		addr := testAddress()
		_, err := svc.addresses.CreateForAccount(ctx, uuid.New(), &addr)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AddressAlreadyExists", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		first := testAddress()
		firstID, err := svc.addresses.CreateForAccount(ctx, accountID, &first)
		require.NoError(t, err)

		second := testAddress()
		second.Street = "1 Other Street"
		_, err = svc.addresses.CreateForAccount(ctx, accountID, &second)
		assert.ErrorIs(t, err, ErrInvalidOperation)

		// Original address is untouched
		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, firstID, found.ID)
		assert.Equal(t, "350 Fifth Avenue", found.Street)
	})
}

func TestAddressService_UpdateForAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("OverwritesInPlace", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		addr := testAddress()
		originalID, err := svc.addresses.CreateForAccount(ctx, accountID, &addr)
		require.NoError(t, err)

		updated := testAddress()
		updated.ID = uuid.New() // caller-supplied id must be ignored
		updated.Street = "1600 Pennsylvania Avenue"
		updated.City = "Washington"
		updated.State = "DC"
		updated.Zipcode = 20500
		require.NoError(t, svc.addresses.UpdateForAccount(ctx, accountID, &updated))

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, originalID, found.ID, "identifier never changes on update")
		assert.Equal(t, "1600 Pennsylvania Avenue", found.Street)
		assert.Equal(t, models.State("DC"), found.State)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := newTestServices()
		addr := testAddress()
		err := svc.addresses.UpdateForAccount(ctx, uuid.New(), &addr)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("NoAddressToUpdate", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		addr := testAddress()
		err := svc.addresses.UpdateForAccount(ctx, accountID, &addr)
		assert.ErrorIs(t, err, ErrInvalidOperation)

		// It never creates one
		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestAddressService_FindForAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("NoneIsNotAnError", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := newTestServices()
		_, err := svc.addresses.FindForAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAddressService_DeleteForAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("DetachesThenDeletes", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		addr := testAddress()
		_, err := svc.addresses.CreateForAccount(ctx, accountID, &addr)
		require.NoError(t, err)

		require.NoError(t, svc.addresses.DeleteForAccount(ctx, accountID))

		account, err := svc.accounts.FindByID(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, account.AddressID, "account reference is cleared")

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := newTestServices()
		err := svc.addresses.DeleteForAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("NoAddressToDelete", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})
		err := svc.addresses.DeleteForAccount(ctx, accountID)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}
