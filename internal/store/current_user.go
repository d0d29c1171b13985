package store

import (
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
)

// SetCurrentUser stores the locally signed-in user. nil signs out.
// No verification happens here.
func (s *Service) SetCurrentUser(user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		return kvstore.Delete(s.kv, kvstore.KeyCurrentUser)
	}
	return kvstore.WriteValue(s.kv, kvstore.KeyCurrentUser, *user)
}

// CurrentUser returns the locally signed-in user, if any.
func (s *Service) CurrentUser() (entities.User, bool, error) {
	return kvstore.ReadValue[entities.User](s.kv, kvstore.KeyCurrentUser)
}
