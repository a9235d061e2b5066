// Package ingest provides pipeline orchestration for loading documents into
// owner collections.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Reading documents from a directory
//   - Segmenting document text into passages
//   - Generating and normalizing passage embeddings
//   - Upserting passages into storage
//
// Documents are processed concurrently using a worker pool to maximize
// throughput. Per-document errors are logged and skipped so a single bad
// file does not fail the batch.
package ingest
