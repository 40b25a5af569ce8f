package brokerage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/brokerage/internal/models"
)

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("WithoutAddress", func(t *testing.T) {
		svc := newTestServices()
		id, err := svc.accounts.Create(ctx, &models.Account{Username: "bob", Email: "b@x.com"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		account, err := svc.accounts.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "bob", account.Username)
		assert.Nil(t, account.AddressID)
	})

	t.Run("WithEmbeddedAddress", func(t *testing.T) {
		svc := newTestServices()
		addr := testAddress()
		id, err := svc.accounts.Create(ctx, &models.Account{
			Username: "alice",
			Email:    "a@x.com",
			Address:  &addr,
		})
		require.NoError(t, err)

		account, err := svc.accounts.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, account.AddressID, "address is persisted first and linked")

		found, err := svc.addresses.FindForAccount(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, *account.AddressID, found.ID)
		assert.Equal(t, models.State("NY"), found.State)
	})
}

func TestAccountService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingID", func(t *testing.T) {
		svc := newTestServices()
		err := svc.accounts.Update(ctx, &models.Account{Username: "alice", Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := newTestServices()
		err := svc.accounts.Update(ctx, &models.Account{ID: uuid.New(), Username: "alice", Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("WithAddressRequiresExistingAddress", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		// Unlike address create, account update never implicitly creates an address
		addr := testAddress()
		err := svc.accounts.Update(ctx, &models.Account{
			ID:       accountID,
			Username: "alice",
			Email:    "a@x.com",
			Address:  &addr,
		})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("WithAddressOverwritesExisting", func(t *testing.T) {
		svc := newTestServices()
		addr := testAddress()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com", Address: &addr})

		replacement := testAddress()
		replacement.Street = "221B Baker Street"
		require.NoError(t, svc.accounts.Update(ctx, &models.Account{
			ID:       accountID,
			Username: "alice2",
			Email:    "a2@x.com",
			Address:  &replacement,
		}))

		account, err := svc.accounts.FindByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, "alice2", account.Username)
		require.NotNil(t, account.AddressID)

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, "221B Baker Street", found.Street, "incoming fields win under the existing id")
	})

	t.Run("WithoutAddressDetachesAndDeletes", func(t *testing.T) {
		svc := newTestServices()
		addr := testAddress()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com", Address: &addr})

		require.NoError(t, svc.accounts.Update(ctx, &models.Account{
			ID:       accountID,
			Username: "alice",
			Email:    "a@x.com",
		}))

		found, err := svc.addresses.FindForAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, found, "omitting the address detaches and deletes it")

		account, err := svc.accounts.FindByID(ctx, accountID)
		require.NoError(t, err)
		assert.Nil(t, account.AddressID)
	})

	t.Run("WithoutAddressOnAddresslessAccount", func(t *testing.T) {
		svc := newTestServices()
		accountID := svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})

		err := svc.accounts.Update(ctx, &models.Account{
			ID:       accountID,
			Username: "alice",
			Email:    "a@x.com",
		})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestAccountService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("FindByIDAbsent", func(t *testing.T) {
		svc := newTestServices()
		account, err := svc.accounts.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("ListAll", func(t *testing.T) {
		svc := newTestServices()
		svc.mustCreateAccount(t, models.Account{Username: "alice", Email: "a@x.com"})
		svc.mustCreateAccount(t, models.Account{Username: "bob", Email: "b@x.com"})

		accounts, err := svc.accounts.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})
}
