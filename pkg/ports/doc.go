/*
Package ports defines the driven ports (interfaces) for the redscript runner.

These interfaces decouple the caching and composition logic from the store
transport and from where script sources live.

# Key Interfaces

  - ScriptClient: Registers script bodies and executes them by hash or by body.
  - SourceReader: Reads the text of a script or prelude from a locator.
*/
package ports
