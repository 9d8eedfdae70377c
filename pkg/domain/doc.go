/*
Package domain contains the core types shared by the script runner and its adapters.

It defines what a script call is made of (keys and args that may be generated per
call), what the shared prelude looks like once loaded, and what a successful
registration with the store produces. This package is kept pure and free of I/O.

# Key Entities

  - Param: A key or argument, either a fixed value or a generator invoked on every run.
  - SharedConfig: The optional prelude composed in front of every script.
  - PreludeState: The loaded prelude and the line offset it imposes.
  - Registration: The hash returned by the store for one combined script body.
  - CacheKey: The identity of the registration table a runner writes into.
*/
package domain
