// Package openai implements the llm.Provider interface against the OpenAI
// Chat Completions API, including multimodal (text + inlined image) user
// content.
package openai
