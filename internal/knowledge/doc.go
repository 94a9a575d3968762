// Package knowledge implements the retrieval side of vayazh's RAG pipeline.
//
// The package manages:
//
//   - Splitting raw source documents into bounded, overlapping chunks
//   - Embedding chunks into fixed-length vectors (Genkit embedder bridge)
//   - A vector index answering nearest-neighbor queries with a minimum
//     similarity cutoff
//   - The one-shot ingestion pipeline that builds the index at startup
//
// # Architecture
//
//	Source documents (web pages, PDFs)
//	     |
//	     +-- SplitText (recursive character chunking)
//	     +-- Embedder (Gemini via Genkit)
//	     |
//	     v
//	Index (chromem-go in memory, or PostgreSQL + pgvector)
//	     |
//	     v
//	assistant (prompt context)
//
// The index is built exactly once before the server accepts queries and is
// read-only afterwards; Search needs no locking on the memory backend.
package knowledge
