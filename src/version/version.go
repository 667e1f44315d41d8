package version

// Version is overridden at build time with -ldflags "-X shotty/src/version.Version=...".
var Version = "0.1.0-dev"
