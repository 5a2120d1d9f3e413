// Package toolfactory provides the configuration and the factory for the tool specs,
// and the cache shared by them.
package toolfactory
