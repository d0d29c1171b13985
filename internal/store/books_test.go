package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

func TestBooks_Add(t *testing.T) {
	svc, _ := setupService(t)
	rec := recordEvents(t, svc.Bus())

	var snapshot []entities.Book
	svc.Bus().Books.Subscribe(func(books []entities.Book) { snapshot = books })

	book, err := svc.Books.Add(BookInput{
		Title:    "  Project Hail Mary ",
		Author:   "Andy Weir",
		Price:    price("15.49"),
		Category: "Science Fiction",
		Stock:    12,
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", book.ID)
	assert.Equal(t, "Project Hail Mary", book.Title)
	assert.Equal(t, testNow, book.CreatedAt)

	all, err := svc.Books.All()
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, book, all[5])

	assert.Equal(t, 1, rec.total())
	assert.Equal(t, 1, rec.count(events.TopicBooks))
	assert.Equal(t, all, snapshot)
}

func TestBooks_AddValidation(t *testing.T) {
	valid := BookInput{Title: "Dune Messiah", Author: "Frank Herbert", Price: price("9.99"), Stock: 3}

	tests := []struct {
		name  string
		edit  func(*BookInput)
		field string
	}{
		{"empty title", func(in *BookInput) { in.Title = "  " }, "title"},
		{"empty author", func(in *BookInput) { in.Author = "" }, "author"},
		{"negative price", func(in *BookInput) { in.Price = price("-1") }, "price"},
		{"negative stock", func(in *BookInput) { in.Stock = -1 }, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, kv := setupService(t)
			rec := recordEvents(t, svc.Bus())
			before := rawValue(t, kv, kvstore.KeyBooks)

			in := valid
			tt.edit(&in)
			_, err := svc.Books.Add(in)

			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, before, rawValue(t, kv, kvstore.KeyBooks))
			assert.Zero(t, rec.total())
		})
	}
}

func TestBooks_UpdateMerge(t *testing.T) {
	svc, _ := setupService(t)
	rec := recordEvents(t, svc.Bus())

	updated, found, err := svc.Books.Update("1", BookPatch{Stock: ptr(40)})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 40, updated.Stock)
	assert.Equal(t, "11.49", updated.Price.StringFixed(2))
	assert.Equal(t, "Atomic Habits", updated.Title)

	stored := bookByID(t, svc, "1")
	assert.Equal(t, updated, stored)
	assert.Equal(t, 1, rec.count(events.TopicBooks))
}

func TestBooks_UpdateMissing(t *testing.T) {
	svc, kv := setupService(t)
	rec := recordEvents(t, svc.Bus())
	before := rawValue(t, kv, kvstore.KeyBooks)

	_, found, err := svc.Books.Update("nope", BookPatch{Stock: ptr(1)})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, rawValue(t, kv, kvstore.KeyBooks))
	assert.Zero(t, rec.total())
}

func TestBooks_UpdateRejectsNegativeStock(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.Books.Update("1", BookPatch{Stock: ptr(-5)})
	assert.True(t, IsValidation(err))
	assert.Equal(t, 45, bookByID(t, svc, "1").Stock)
}

func TestBooks_Delete(t *testing.T) {
	svc, kv := setupService(t)
	rec := recordEvents(t, svc.Bus())

	t.Run("missing id leaves bytes unchanged", func(t *testing.T) {
		before := rawValue(t, kv, kvstore.KeyBooks)

		deleted, err := svc.Books.Delete("missing")
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, before, rawValue(t, kv, kvstore.KeyBooks))
		assert.Zero(t, rec.total())
	})

	t.Run("existing id", func(t *testing.T) {
		deleted, err := svc.Books.Delete("3")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, found, err := svc.Books.Get("3")
		require.NoError(t, err)
		assert.False(t, found)

		all, err := svc.Books.All()
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, 1, rec.count(events.TopicBooks))
	})

	t.Run("second delete is a no-op", func(t *testing.T) {
		deleted, err := svc.Books.Delete("3")
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 1, rec.count(events.TopicBooks))
	})
}

func TestBooks_DecrementStock(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		amount    int
		wantOK    bool
		wantStock int
	}{
		{"within stock", "5", 2, true, 20},
		{"exactly all", "5", 22, true, 0},
		{"more than stock", "5", 23, false, 22},
		{"zero amount", "5", 0, false, 22},
		{"negative amount", "5", -3, false, 22},
		{"missing book", "missing", 1, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupService(t)
			rec := recordEvents(t, svc.Bus())

			ok, err := svc.Books.DecrementStock(tt.id, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantStock >= 0 {
				assert.Equal(t, tt.wantStock, bookByID(t, svc, tt.id).Stock)
			}
			if tt.wantOK {
				assert.Equal(t, 1, rec.total())
			} else {
				assert.Zero(t, rec.total())
			}
		})
	}
}

func TestBooks_StockNeverNegative(t *testing.T) {
	svc, _ := setupService(t)

	amounts := []int{5, 9, 1, 7, 3, 8, 2, 6, 4, 10, 1, 1}
	for _, amount := range amounts {
		_, err := svc.Books.DecrementStock("5", amount)
		require.NoError(t, err)

		_, _ = svc.CreateOrder(OrderInput{
			Buyer: GuestBuyer,
			Items: []entities.OrderItem{{BookID: "5", Title: "Dune", Quantity: amount, Price: price("13.99")}},
		})

		assert.GreaterOrEqual(t, bookByID(t, svc, "5").Stock, 0)
	}
}

func TestBooks_Search(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"dune", []string{"5"}},
		{"JAMES", []string{"1"}},
		{"fiction", []string{"4", "5"}},
		{"the", []string{"2", "4"}},
		{"", []string{"1", "2", "3", "4", "5"}},
		{"nothing matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			books, err := svc.Books.Search(tt.query)
			require.NoError(t, err)

			var ids []string
			for _, b := range books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBooks_ByCategoryAndCategories(t *testing.T) {
	svc, _ := setupService(t)

	books, err := svc.Books.ByCategory("Mystery")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "2", books[0].ID)

	books, err = svc.Books.ByCategory("mystery")
	require.NoError(t, err)
	assert.Empty(t, books)

	categories, err := svc.Books.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Self-Help", "Mystery", "Biography", "Fiction", "Science Fiction"}, categories)
}

func TestBooks_LowStock(t *testing.T) {
	svc, _ := setupService(t, WithLowStockThreshold(30))

	books, err := svc.Books.LowStock()
	require.NoError(t, err)

	var ids []string
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"3", "5"}, ids)
}

func TestBooks_RoundTrip(t *testing.T) {
	svc, kv := setupService(t)

	_, err := svc.Books.Add(BookInput{Title: "Circe", Author: "Madeline Miller", Price: price("16.00"), Stock: 4})
	require.NoError(t, err)

	first, err := svc.Books.All()
	require.NoError(t, err)

	reopened := NewService(kv, nil)
	second, err := reopened.Books.All()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
