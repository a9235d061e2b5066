// Package openai implements the ai interfaces using OpenAI-compatible APIs
// via langchaingo. It works with any server speaking the OpenAI wire format,
// including Ollama, LocalAI and vLLM.
package openai
