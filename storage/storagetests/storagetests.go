// Package storagetests provides common acceptance tests for storage.Store
// implementations.
package storagetests

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dpup/syncauth/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Color int

const (
	ColorRed    Color = 1
	ColorGreen  Color = 2
	ColorYellow Color = 4
)

type Fruit struct {
	ID    string
	Name  string
	Color Color
}

func (f Fruit) PK() string {
	return f.ID
}

type Planet struct {
	ID   string
	Name string
}

func (p Planet) PK() string {
	return p.ID
}

type BadModel struct {
	ID    string
	Cycle *BadModel
}

func (b BadModel) PK() string {
	return b.ID
}

func Run(t *testing.T, newStore func() storage.Store) {

	t.Run("TestUpsertReadRoundTrip", func(t *testing.T) {
		apple := Fruit{ID: "1", Name: "Apple", Color: ColorGreen}
		banana := Fruit{ID: "2", Name: "Banana", Color: ColorYellow}

		apple2 := Fruit{}
		banana2 := Fruit{}

		store := newStore()
		err := store.Upsert(apple, banana)
		require.Nil(t, err, "unexpected error putting records")

		err = store.Read("1", &apple2)
		require.Nil(t, err, "unexpected error getting apple")
		assert.Equal(t, apple, apple2)

		err = store.Read("2", &banana2)
		require.Nil(t, err, "unexpected error getting banana")
		assert.Equal(t, banana, banana2)
	})

	t.Run("TestUpsertOverwrites", func(t *testing.T) {
		apple := Fruit{ID: "1", Name: "Apple", Color: ColorGreen}

		store := newStore()
		require.Nil(t, store.Upsert(apple))

		apple.Color = ColorRed
		require.Nil(t, store.Upsert(apple))

		apple2 := Fruit{}
		require.Nil(t, store.Read("1", &apple2))
		assert.Equal(t, ColorRed, apple2.Color)
	})

	t.Run("TestUpsertBadModel", func(t *testing.T) {
		bm := BadModel{ID: "XXX"}
		bm.Cycle = &bm

		store := newStore()
		err := store.Upsert(bm)
		assert.ErrorIs(t, err, storage.ErrInvalidModel, "expected invalid model error")

		exists, err := store.Exists("XXX", BadModel{})
		require.Nil(t, err)
		assert.False(t, exists, "bad model should not be stored")
	})

	t.Run("TestReadNotFound", func(t *testing.T) {
		store := newStore()
		err := store.Read("1", &Fruit{})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = store.Upsert(&Fruit{ID: "1", Name: "Apple"})
		require.Nil(t, err, "unexpected error creating records")

		err = store.Read("2", &Fruit{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("TestReadWithNilPointer", func(t *testing.T) {
		store := newStore()
		require.Nil(t, store.Upsert(Fruit{ID: "1", Name: "Apple"}))

		var apple *Fruit
		err := store.Read("1", apple)
		assert.ErrorIs(t, err, storage.ErrNilModel)
	})

	t.Run("TestModelsAreSeparated", func(t *testing.T) {
		store := newStore()
		require.Nil(t, store.Upsert(Fruit{ID: "1", Name: "Apple"}, Planet{ID: "1", Name: "Mars"}))

		f := Fruit{}
		p := Planet{}
		require.Nil(t, store.Read("1", &f))
		require.Nil(t, store.Read("1", &p))
		assert.Equal(t, "Apple", f.Name)
		assert.Equal(t, "Mars", p.Name)
	})

	t.Run("TestExists", func(t *testing.T) {
		store := newStore()
		exists, err := store.Exists("3", &Fruit{})
		assert.False(t, exists)
		assert.Nil(t, err)

		err = store.Upsert(&Fruit{ID: "3", Name: "Mango"})
		assert.Nil(t, err)

		exists, err = store.Exists("3", &Fruit{})
		assert.True(t, exists)
		assert.Nil(t, err)
	})

	t.Run("TestConcurrentAccess", func(t *testing.T) {
		store := newStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				assert.Nil(t, store.Upsert(Fruit{ID: "shared", Name: fmt.Sprintf("v%d", i)}))
			}(i)
			go func() {
				defer wg.Done()
				f := Fruit{}
				if err := store.Read("shared", &f); err == nil {
					assert.Equal(t, "shared", f.ID)
				}
			}()
		}
		wg.Wait()
	})
}
