package store

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
)

// InitOptions controls first-run seeding.
type InitOptions struct {
	SeedCatalog bool
	SeedAdmin   bool
}

// BootstrapAdmin is the identity of the admin created on first run.
var BootstrapAdmin = UserInput{
	Name:  "Admin User",
	Email: "admin@bookhaven.com",
	Role:  entities.RoleAdmin,
}

// SeedCatalog returns the starter catalog with fixed ids "1" to "5".
func SeedCatalog(createdAt time.Time) []entities.Book {
	books := []entities.Book{
		{
			ID:          "1",
			Title:       "Atomic Habits",
			Author:      "James Clear",
			Price:       decimal.RequireFromString("11.49"),
			Image:       "https://images.unsplash.com/photo-1531346878377-a5be20888e57?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=80",
			Description: "Transform your life with tiny changes that lead to remarkable results.",
			Category:    "Self-Help",
			Stock:       45,
		},
		{
			ID:          "2",
			Title:       "The Silent Patient",
			Author:      "Alex Michaelides",
			Price:       decimal.RequireFromString("12.99"),
			Image:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=80",
			Description: "A gripping psychological thriller about a woman who refuses to speak.",
			Category:    "Mystery",
			Stock:       32,
		},
		{
			ID:          "3",
			Title:       "Educated",
			Author:      "Tara Westover",
			Price:       decimal.RequireFromString("14.99"),
			Image:       "https://images.unsplash.com/photo-1589998059171-988d887df646?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=80",
			Description: "A memoir about a woman who grows up in a survivalist family and eventually escapes.",
			Category:    "Biography",
			Stock:       28,
		},
		{
			ID:          "4",
			Title:       "The Midnight Library",
			Author:      "Matt Haig",
			Price:       decimal.RequireFromString("10.99"),
			Image:       "https://images.unsplash.com/photo-1541963463532-d68292c34b19?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=80",
			Description: "Between life and death exists the Midnight Library.",
			Category:    "Fiction",
			Stock:       50,
		},
		{
			ID:          "5",
			Title:       "Dune",
			Author:      "Frank Herbert",
			Price:       decimal.RequireFromString("13.99"),
			Image:       "https://images.unsplash.com/photo-1589998059171-988d887df646?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=80",
			Description: "A stunning blend of adventure and mysticism, environmentalism and politics.",
			Category:    "Science Fiction",
			Stock:       22,
		},
	}
	for i := range books {
		books[i].CreatedAt = createdAt
	}
	return books
}

// Initialize creates every collection that does not exist yet. Existing
// collections are left untouched and no events are emitted.
func (s *Service) Initialize(opts InitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found, err := s.kv.Get(kvstore.KeyBooks); err != nil {
		return kvstore.WrapRead(kvstore.KeyBooks, err)
	} else if !found {
		books := []entities.Book{}
		if opts.SeedCatalog {
			books = SeedCatalog(s.timestamp())
			log.Printf("No catalog found, seeding %d books", len(books))
		}
		if err := kvstore.WriteCollection(s.kv, kvstore.KeyBooks, books); err != nil {
			return err
		}
	}

	if _, found, err := s.kv.Get(kvstore.KeyUsers); err != nil {
		return kvstore.WrapRead(kvstore.KeyUsers, err)
	} else if !found {
		users := []entities.User{}
		if opts.SeedAdmin {
			now := s.timestamp()
			users = append(users, entities.User{
				ID:         s.newID(),
				Name:       BootstrapAdmin.Name,
				Email:      BootstrapAdmin.Email,
				Role:       BootstrapAdmin.Role,
				JoinedDate: now.Format(dateLayout),
				CreatedAt:  now,
			})
			log.Printf("No users found, created bootstrap admin %s", BootstrapAdmin.Email)
		}
		if err := kvstore.WriteCollection(s.kv, kvstore.KeyUsers, users); err != nil {
			return err
		}
	}

	if _, found, err := s.kv.Get(kvstore.KeyOrders); err != nil {
		return kvstore.WrapRead(kvstore.KeyOrders, err)
	} else if !found {
		if err := kvstore.WriteCollection(s.kv, kvstore.KeyOrders, []entities.Order{}); err != nil {
			return err
		}
	}
	return nil
}
