// Package http uploads encoded log groups to the ingestion service.
//
// A Client performs one signed POST per log group: encode, optionally
// compress, sign, send and check the status. It never retries.
package http
