// Package tools defines the tool contracts for LLM agents: a single callable ITool,
// and BaseToolSpec, a named set of tool functions exposed by an integration.
// Concrete specs embed BaseSpec to conform to BaseToolSpec, and register their
// types so the conformance of a spec can be verified by name.
package tools
