// Package buildinfo carries build-time version metadata.
package buildinfo

// Version is stamped at build time via -ldflags "-X voidnet/internal/support/buildinfo.Version=...".
var Version = "dev"
