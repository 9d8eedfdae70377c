package redscript_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/redscript"
	"github.com/aretw0/redscript/pkg/adapters/redis"
	"github.com/aretw0/redscript/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

func Example() {
	mr, err := miniredis.Run()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer mr.Close()
	rdb := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer rdb.Close()

	runner := redscript.New(redis.NewFromClient(rdb),
		redscript.WithBase("testdata/lua"),
		redscript.WithRegistry(redscript.NewRegistry()),
	)

	ctx := context.Background()
	if _, err := runner.RunStrings(ctx, "set-key", []string{"greeting"}, []string{"hello"}); err != nil {
		fmt.Println("error:", err)
		return
	}
	res, err := runner.RunStrings(ctx, "get-key", []string{"greeting"}, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res)
	// Output: hello
}

func ExampleWithShared() {
	dir, err := os.MkdirTemp("", "redscript")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		"tenant.lua": "local tenant = KEYS[1]\n",
		"whoami.lua": "return tenant .. ':' .. ARGV[1]\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			fmt.Println("error:", err)
			return
		}
	}

	mr, err := miniredis.Run()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer mr.Close()
	rdb := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer rdb.Close()

	runner := redscript.New(redis.NewFromClient(rdb),
		redscript.WithBase(dir),
		redscript.WithRegistry(redscript.NewRegistry()),
		redscript.WithShared(domain.SharedConfig{
			Path: "tenant",
			Keys: domain.Values("acme"),
		}),
	)

	res, err := runner.RunStrings(context.Background(), "whoami", nil, []string{"alice"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res)
	// Output: acme:alice
}
