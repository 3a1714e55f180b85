// Package genai defines the provider abstraction for Generative AI services.
//
// It includes interfaces and types for interacting with large language models
// (LLMs) in a provider-agnostic way. Concrete implementations are available
// in the genai/impl sub-package.
package genai
