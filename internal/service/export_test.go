package service

// MaxRetrievalLimit exposes the retrieval clamp to the external test package.
const MaxRetrievalLimit = maxRetrievalLimit
