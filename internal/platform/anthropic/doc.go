// Package anthropic provides a generation.Provider backed by Anthropic's
// Messages API. Claude has no response-schema parameter, so the provider
// embeds the JSON schema in the system prompt and relies on the generation
// client to validate what comes back.
package anthropic
