/*
Package redscript runs Lua scripts stored as files against Redis, registering each script once and executing it by hash afterwards.

# Concept

A Runner resolves a script locator to a file, reads it, and registers it with SCRIPT LOAD the first time it is used. Later calls send only the hash with EVALSHA. When the server no longer knows the hash (after SCRIPT FLUSH or a restart), the Runner sends the full body with EVAL instead, without registering again.

Runners that share a Registry and the same prelude configuration share their registrations, so a script is loaded at most once per process even when many runners use it concurrently.

# Shared prelude

A Runner may be configured with a shared script that is placed in front of every script it runs. The prelude can reserve the first keys and args for itself; the script then sees only the caller's keys and args in KEYS and ARGV.

	runner := redscript.New(client,
		redscript.WithBase("./scripts"),
		redscript.WithShared(domain.SharedConfig{
			Path: "shared",
			Keys: domain.Values("tenant:42"),
		}),
	)

Errors raised by the server point into the composed script. The Runner maps them back to the file and line the problem originated in, either the prelude or the script itself.

# Usage

	rdb := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
	runner := redscript.New(redis.NewFromClient(rdb), redscript.WithBase("./scripts"))

	res, err := runner.RunStrings(ctx, "incr-counter", []string{"counter"}, []string{"1"})
	if err != nil {
		var serr *domain.ScriptError
		if errors.As(err, &serr) {
			log.Printf("%s failed: %s", serr.Script, serr.Message)
		}
	}
*/
package redscript
