// Package services implements the driving ports with the core use-case
// logic: the ingestion pipeline (chunk, embed, store) and the retrieval
// orchestrator (embed, search, assemble context, generate answer).
//
// Services depend only on domain types and driven port interfaces;
// infrastructure is injected through constructors.
package services
