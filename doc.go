// Package golly is a collection of reusable common utilities for the Go programming language.
//
// Golly provides a wide range of sub-packages that cover common application needs
// including logging, configuration, REST client/server, messaging, codec, collections,
// CLI, GenAI providers, and more.
//
// Each sub-package is independently importable:
//
//	import "github.com/spotifreak/spotifreak/rest"      // REST client and server
//	import "github.com/spotifreak/spotifreak/l3"        // Logging
//	import "github.com/spotifreak/spotifreak/codec"     // Encoding/decoding (JSON, XML, YAML)
//	import "github.com/spotifreak/spotifreak/config"    // Application configuration
//	import "github.com/spotifreak/spotifreak/messaging" // Generic messaging API
//	import "github.com/spotifreak/spotifreak/genai"     // Generative AI provider abstractions
//
// For a complete list of packages and documentation, see:
// https://pkg.go.dev/github.com/spotifreak/spotifreak
package golly
