// Package gateway defines the remote mutation boundary the engine syncs
// through, plus the implementations that sit behind it.
//
// A Gateway call either resolves with the accepted record (nothing for
// deletes) or fails with an error whose message is shown to the user. The
// engine does not retry, does not look at status codes, and does not assume
// idempotency, so implementations are free to be slow or flaky:
//
//   - Simulated: randomized latency and a fixed failure probability, used to
//     exercise rollback paths.
//   - HTTPClient: JSON over HTTP against a remote source of record.
//   - Server: a chi-routed reference remote that HTTPClient can talk to.
//
// Test doubles with scripted outcomes live in gatewaytest.
package gateway
