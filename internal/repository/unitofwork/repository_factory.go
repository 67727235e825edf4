package unitofwork

import "context"

// RepositoryFactory mints a UnitOfWork per operation. Services hold the
// factory, never a UnitOfWork, so no transaction state leaks across requests.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
