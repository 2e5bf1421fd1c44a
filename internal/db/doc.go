// Package db opens single PostgreSQL connections for readiness probes.
//
// Connectors cover plain credentials, AWS RDS IAM tokens, Azure Entra ID tokens
// and Google Cloud SQL IAM authentication. None of them retry; the retry
// executor drives repeated Connect calls.
package db
