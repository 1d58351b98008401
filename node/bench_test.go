package node

import (
	"context"
	"testing"
	"time"

	"rosgo/master"
	"rosgo/msgs/rosgo_tutorials"
	"rosgo/msgs/std_msgs"
	"rosgo/wire"
)

// BenchmarkPublishLatched measures the cost of re-publishing to a latched
// topic with a fixed subscriber count already attached, grounded on
// original_source/rosrust's publish throughput benchmark.
func BenchmarkPublishLatched(b *testing.B) {
	m := master.NewInMemoryMaster()
	cfg := testConfig()
	talker, err := New("talker", cfg, m)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer talker.Close()

	pub, err := talker.Advertise("/bench", &std_msgs.StringMsg{}, "string data\n", 16, true)
	if err != nil {
		b.Fatalf("Advertise: %v", err)
	}

	const subscribers = 4
	for i := 0; i < subscribers; i++ {
		n, err := New("sub", cfg, m)
		if err != nil {
			b.Fatalf("New: %v", err)
		}
		defer n.Close()
		_, err = n.Subscribe("/bench", "std_msgs/String", (&std_msgs.StringMsg{}).MD5Sum(),
			func() wire.Message { return &std_msgs.StringMsg{} }, 16,
			func(wire.Message) {})
		if err != nil {
			b.Fatalf("Subscribe: %v", err)
		}
	}
	_ = waitUntilBench(func() bool { return pub.SubscriberCount() == subscribers })

	msg := &std_msgs.StringMsg{Data: "benchmark payload"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := pub.Publish(msg); err != nil {
			b.Fatalf("Publish: %v", err)
		}
	}
}

// BenchmarkServiceCallRoundTrip measures one fresh-connection request/response
// round trip against a trivial handler.
func BenchmarkServiceCallRoundTrip(b *testing.B) {
	m := master.NewInMemoryMaster()
	cfg := testConfig()
	adder, err := New("adder", cfg, m)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer adder.Close()
	caller, err := New("caller", cfg, m)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer caller.Close()

	svcMD5 := (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
	_, err = adder.AdvertiseService("/add_two_ints", reqFactory, resFactory, svcMD5, twoIntsHandler)
	if err != nil {
		b.Fatalf("AdvertiseService: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := caller.WaitForService(ctx, "/add_two_ints"); err != nil {
		b.Fatalf("WaitForService: %v", err)
	}
	client, err := caller.ServiceClient("/add_two_ints", reqFactory, resFactory, svcMD5)
	if err != nil {
		b.Fatalf("ServiceClient: %v", err)
	}

	req := &rosgo_tutorials.TwoIntsReq{A: 1, B: 2}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := client.Call(context.Background(), req); err != nil {
			b.Fatalf("Call: %v", err)
		}
	}
}

func waitUntilBench(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
