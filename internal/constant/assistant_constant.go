package constant

const (
	// Index message kinds carried on the in-process indexing topic.
	IndexKindProduct   = "product"
	IndexKindKnowledge = "knowledge"

	// NATS event types, published as events.<type> subjects.
	EventProductIndexed   = "PRODUCT_INDEXED"
	EventKnowledgeIndexed = "KNOWLEDGE_INDEXED"
	EventCatalogSynced    = "CATALOG_SYNCED"
	EventSessionDeleted   = "SESSION_DELETED"
)
