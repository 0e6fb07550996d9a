// Package cli implements the appcache command tree.
//
// Every command resolves configuration through RootOptions (config file,
// .env, environment, then flags), opens the store for the duration of the
// command and closes it on every exit path. Output is text by default or a
// CLIResponse envelope with --format json.
package cli
