package unitofwork

import (
	"context"

	"ai-shopassist-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation. Single reads
// skip Begin and run on the bare connection; multi-write paths (the knowledge
// delete cascade, feed sync batches) bracket their writes with
// Begin/Commit/Rollback so a partial failure never leaves chunks without a
// parent document.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	KnowledgeRepository() contract.KnowledgeRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
}
