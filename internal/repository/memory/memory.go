package memory

import "github.com/egannguyen/petsupplies/internal/repository"

// NewRepositories wires every in-memory repository into one bundle.
func NewRepositories() *repository.Repositories {
	catalog := NewCatalog()
	return &repository.Repositories{
		Products: catalog,
		Reviews:  catalog,
		Orders:   NewOrderRepository(),
		Sellers:  NewSellerRepository(),
		Events:   NewEventStore(),
		Close:    func() error { return nil },
	}
}
