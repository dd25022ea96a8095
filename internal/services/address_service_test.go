package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddressCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "asha")

	t.Run("first address becomes default", func(t *testing.T) {
		home, err := svc.Create(ctx, user.ID, addressInput("Home"))
		require.NoError(t, err)
		assert.True(t, home.IsDefault)
		assert.Equal(t, "Home", home.Label)
	})

	t.Run("later addresses are not default unless asked", func(t *testing.T) {
		work, err := svc.Create(ctx, user.ID, addressInput("Work"))
		require.NoError(t, err)
		assert.False(t, work.IsDefault)
		assert.EqualValues(t, 1, defaultCount(t, db, user.ID))
	})

	t.Run("new default clears the old one", func(t *testing.T) {
		in := addressInput("Gym")
		in.IsDefault = boolPtr(true)
		gym, err := svc.Create(ctx, user.ID, in)
		require.NoError(t, err)
		assert.True(t, gym.IsDefault)
		assert.EqualValues(t, 1, defaultCount(t, db, user.ID))

		primary, err := svc.GetPrimary(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, gym.ID, primary.ID)
	})

	t.Run("label and address text fall back", func(t *testing.T) {
		lat, lng := coords(13.0, 80.2)
		a, err := svc.Create(ctx, user.ID, AddressInput{FormattedAddress: "Only formatted", Latitude: lat, Longitude: lng})
		require.NoError(t, err)
		assert.Equal(t, "Other", a.Label)
		assert.Equal(t, "Only formatted", a.AddressLine)
		assert.Equal(t, "Only formatted", a.DisplayString())
	})

	t.Run("sixth address is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, user.ID, addressInput("Fifth"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, user.ID, addressInput("Sixth"))
		assert.True(t, errors.Is(err, ErrLimitExceeded))

		list, err := svc.List(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, list, models.MaxAddressesPerUser)
	})
}

func TestAddressCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	user := createTestUser(t, db, "ravi")

	in := addressInput("Home")
	in.Latitude = nil
	_, err := svc.Create(context.Background(), user.ID, in)
	assert.True(t, errors.Is(err, ErrValidation))

	in = addressInput("Home")
	in.Longitude = float64Ptr(200)
	_, err = svc.Create(context.Background(), user.ID, in)
	assert.True(t, errors.Is(err, ErrValidation))

	var n int64
	db.Model(&models.Address{}).Count(&n)
	assert.Zero(t, n)
}

func TestAddressListOrdering(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "meena")

	home, _ := svc.Create(ctx, user.ID, addressInput("Home"))
	work, _ := svc.Create(ctx, user.ID, addressInput("Work"))
	gym, _ := svc.Create(ctx, user.ID, addressInput("Gym"))
	touch(t, db, work.ID, time.Now().Add(time.Hour))

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, home.ID, list[0].ID, "default first")
	assert.Equal(t, work.ID, list[1].ID, "then most recently updated")
	assert.Equal(t, gym.ID, list[2].ID)
}

func TestAddressUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "kiran")
	other := createTestUser(t, db, "intruder")

	home, _ := svc.Create(ctx, user.ID, addressInput("Home"))
	work, _ := svc.Create(ctx, user.ID, addressInput("Work"))

	t.Run("omitted flag keeps default", func(t *testing.T) {
		in := addressInput("Home sweet home")
		updated, err := svc.Update(ctx, user.ID, home.ID, in)
		require.NoError(t, err)
		assert.True(t, updated.IsDefault)
		assert.Equal(t, "Home sweet home", updated.Label)
	})

	t.Run("marking default moves the flag", func(t *testing.T) {
		in := addressInput("Work")
		in.IsDefault = boolPtr(true)
		updated, err := svc.Update(ctx, user.ID, work.ID, in)
		require.NoError(t, err)
		assert.True(t, updated.IsDefault)
		assert.EqualValues(t, 1, defaultCount(t, db, user.ID))

		primary, _ := svc.GetPrimary(ctx, user.ID)
		assert.Equal(t, work.ID, primary.ID)
	})

	t.Run("clearing default promotes another address", func(t *testing.T) {
		in := addressInput("Work")
		in.IsDefault = boolPtr(false)
		updated, err := svc.Update(ctx, user.ID, work.ID, in)
		require.NoError(t, err)
		assert.False(t, updated.IsDefault)
		assert.EqualValues(t, 1, defaultCount(t, db, user.ID))

		primary, _ := svc.GetPrimary(ctx, user.ID)
		assert.Equal(t, home.ID, primary.ID)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := svc.Update(ctx, other.ID, home.ID, addressInput("Stolen"))
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestAddressUpdateOnlyAddressStaysDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "solo")

	home, _ := svc.Create(ctx, user.ID, addressInput("Home"))
	in := addressInput("Home")
	in.IsDefault = boolPtr(false)

	updated, err := svc.Update(ctx, user.ID, home.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.EqualValues(t, 1, defaultCount(t, db, user.ID))
}

func TestAddressDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "divya")

	home, _ := svc.Create(ctx, user.ID, addressInput("Home"))
	work, _ := svc.Create(ctx, user.ID, addressInput("Work"))
	gym, _ := svc.Create(ctx, user.ID, addressInput("Gym"))
	touch(t, db, work.ID, time.Now().Add(time.Hour))
	touch(t, db, gym.ID, time.Now().Add(-time.Hour))

	t.Run("not owned", func(t *testing.T) {
		stranger := createTestUser(t, db, "stranger")
		err := svc.Delete(ctx, stranger.ID, home.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("deleting the default promotes the most recently updated", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, user.ID, home.ID))
		assert.EqualValues(t, 1, defaultCount(t, db, user.ID))

		primary, err := svc.GetPrimary(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, work.ID, primary.ID)
		assert.True(t, primary.IsDefault)
	})

	t.Run("deleting a non default keeps the default", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, user.ID, gym.ID))
		primary, _ := svc.GetPrimary(ctx, user.ID)
		assert.Equal(t, work.ID, primary.ID)
	})

	t.Run("deleting the last address leaves nothing", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, user.ID, work.ID))
		assert.EqualValues(t, 0, defaultCount(t, db, user.ID))

		_, err := svc.GetPrimary(ctx, user.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestAddressSetDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "gopal")

	_, _ = svc.Create(ctx, user.ID, addressInput("Home"))
	work, _ := svc.Create(ctx, user.ID, addressInput("Work"))

	updated, err := svc.SetDefault(ctx, user.ID, work.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.EqualValues(t, 1, defaultCount(t, db, user.ID))

	_, err = svc.SetDefault(ctx, user.ID, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualValues(t, 1, defaultCount(t, db, user.ID))
}

func TestAddressResolve(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "lata")

	_, err := svc.Resolve(ctx, user.ID, nil)
	assert.True(t, errors.Is(err, ErrNotFound))

	home, _ := svc.Create(ctx, user.ID, addressInput("Home"))
	work, _ := svc.Create(ctx, user.ID, addressInput("Work"))

	got, err := svc.Resolve(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, home.ID, got.ID)

	got, err = svc.Resolve(ctx, user.ID, uintPtr(work.ID))
	require.NoError(t, err)
	assert.Equal(t, work.ID, got.ID)
}

// Any sequence of address operations leaves exactly one default while addresses exist
func TestAddressSingleDefaultUnderRandomOperations(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "fuzz")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		list, err := svc.List(ctx, user.ID)
		require.NoError(t, err)

		var pick uint
		if len(list) > 0 {
			pick = list[rng.Intn(len(list))].ID
		}

		switch op := rng.Intn(4); {
		case op == 0 || len(list) == 0:
			in := addressInput("Random")
			if rng.Intn(2) == 0 {
				in.IsDefault = boolPtr(true)
			}
			_, err = svc.Create(ctx, user.ID, in)
			if errors.Is(err, ErrLimitExceeded) {
				err = nil
			}
		case op == 1:
			in := addressInput("Edited")
			switch rng.Intn(3) {
			case 0:
				in.IsDefault = boolPtr(true)
			case 1:
				in.IsDefault = boolPtr(false)
			}
			_, err = svc.Update(ctx, user.ID, pick, in)
		case op == 2:
			err = svc.Delete(ctx, user.ID, pick)
		default:
			_, err = svc.SetDefault(ctx, user.ID, pick)
		}
		require.NoError(t, err)

		var total int64
		db.Model(&models.Address{}).Where("user_id = ?", user.ID).Count(&total)
		assert.LessOrEqual(t, total, int64(models.MaxAddressesPerUser))
		if total > 0 {
			require.EqualValues(t, 1, defaultCount(t, db, user.ID), "step %d", i)
		} else {
			require.EqualValues(t, 0, defaultCount(t, db, user.ID), "step %d", i)
		}
	}
}

func touch(t *testing.T, db *gorm.DB, addressID uint, at time.Time) {
	require.NoError(t, db.Model(&models.Address{}).Where("id = ?", addressID).UpdateColumn("updated_at", at).Error)
}
