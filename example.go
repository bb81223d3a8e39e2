/*
 * a basic example for lamina usage
 */
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/diag"
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/ops"
)

var (
	opt_n      = flag.Int("n", 20, "how many ticks to feed in")
	opt_period = flag.Duration("period", 100*time.Millisecond, "sample-every period")
)

func main() {
	flag.Parse()
	ctx := lclock.Background()

	// raw: the source of events, fed by main() below.
	raw := channel.New[int](ctx)

	// even: every even value, doubled.
	even := channel.Map(channel.Filter(channel.Fork(raw), func(v int) bool { return v%2 == 0 }),
		func(v int) (int, error) { return v * 2, nil })

	// a tap observes every value flowing through raw without applying
	// back-pressure to it.
	tap := channel.Tap(raw)
	go channel.ReceiveAll(tap, func(v int) {
		fmt.Printf("tap: saw %d\n", v)
	})

	// sampled: the most recent even value, resampled on a fixed period.
	sampled := ops.SampleEvery(ctx, *opt_period, even)

	// running: a running sum of everything sampled emits.
	running := ops.Reductions(ctx, func(acc, v int) (int, error) { return acc + v, nil }, 0, sampled)

	unsub := channel.ReceiveAll(running, func(v int) {
		fmt.Printf("running total: %d\n", v)
	})
	defer unsub()

	for i := 1; i <= *opt_n; i++ {
		channel.Enqueue(raw, i)
		time.Sleep(10 * time.Millisecond)
	}
	channel.Close(raw)

	snapshot, err := diag.Snapshot(raw.Emitter, even.Emitter, sampled.Emitter, running.Emitter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n", snapshot)
}
