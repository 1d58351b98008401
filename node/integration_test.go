package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rosgo/master"
	"rosgo/msgs/rosgo_tutorials"
	"rosgo/msgs/std_msgs"
	"rosgo/rosconfig"
	"rosgo/wire"
)

func testConfig() *rosconfig.Config {
	return &rosconfig.Config{Remap: map[string]string{}}
}

func mustNode(t *testing.T, name string, m master.Client) *Node {
	t.Helper()
	n, err := New(name, testConfig(), m)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	t.Cleanup(func() { n.Close() })
	return n
}

// S4: a publisher and subscriber in separate nodes exchange one message
// over a real loopback TCP connection, end to end through the master.
func TestPubSubDelivers(t *testing.T) {
	m := master.NewInMemoryMaster()
	talker := mustNode(t, "talker", m)
	listener := mustNode(t, "listener", m)

	received := make(chan string, 1)
	_, err := listener.Subscribe("/chatter", "std_msgs/String", (&std_msgs.StringMsg{}).MD5Sum(),
		func() wire.Message { return &std_msgs.StringMsg{} }, 10,
		func(msg wire.Message) { received <- msg.(*std_msgs.StringMsg).Data })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	pub, err := talker.Advertise("/chatter", &std_msgs.StringMsg{}, "string data\n", 10, false)
	if err != nil {
		t.Fatalf("Advertise: %v", err)
	}

	if err := waitUntil(t, func() bool { return pub.SubscriberCount() > 0 }); err != nil {
		t.Fatalf("subscriber never connected: %v", err)
	}

	if err := pub.Publish(&std_msgs.StringMsg{Data: "ping"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case data := <-received:
		if data != "ping" {
			t.Fatalf("got %q, want %q", data, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

// A latched publication replays its last message to a subscriber that
// connects after the publish happened.
func TestLatchedPublicationReplaysToLateSubscriber(t *testing.T) {
	m := master.NewInMemoryMaster()
	talker := mustNode(t, "talker", m)

	pub, err := talker.Advertise("/latched", &std_msgs.StringMsg{}, "string data\n", 10, true)
	if err != nil {
		t.Fatalf("Advertise: %v", err)
	}
	if err := pub.Publish(&std_msgs.StringMsg{Data: "hello"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	listener := mustNode(t, "listener", m)
	received := make(chan string, 1)
	_, err = listener.Subscribe("/latched", "std_msgs/String", (&std_msgs.StringMsg{}).MD5Sum(),
		func() wire.Message { return &std_msgs.StringMsg{} }, 10,
		func(msg wire.Message) { received <- msg.(*std_msgs.StringMsg).Data })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	select {
	case data := <-received:
		if data != "hello" {
			t.Fatalf("got %q, want %q", data, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for latched replay")
	}
}

func twoIntsHandler(req wire.Message) (wire.Message, error) {
	r := req.(*rosgo_tutorials.TwoIntsReq)
	return &rosgo_tutorials.TwoIntsRes{Sum: r.A + r.B}, nil
}

func reqFactory() wire.Message { return &rosgo_tutorials.TwoIntsReq{} }
func resFactory() wire.Message { return &rosgo_tutorials.TwoIntsRes{} }

// S5: a service call round-trips through a fresh connection and returns
// the handler's computed result.
func TestServiceCallEchoesSum(t *testing.T) {
	m := master.NewInMemoryMaster()
	adder := mustNode(t, "adder", m)
	caller := mustNode(t, "caller", m)

	svcMD5 := (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
	_, err := adder.AdvertiseService("/add_two_ints", reqFactory, resFactory, svcMD5, twoIntsHandler)
	if err != nil {
		t.Fatalf("AdvertiseService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := caller.WaitForService(ctx, "/add_two_ints"); err != nil {
		t.Fatalf("WaitForService: %v", err)
	}

	client, err := caller.ServiceClient("/add_two_ints", reqFactory, resFactory, svcMD5)
	if err != nil {
		t.Fatalf("ServiceClient: %v", err)
	}

	res, err := client.Call(context.Background(), &rosgo_tutorials.TwoIntsReq{A: 48, B: 12})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := res.(*rosgo_tutorials.TwoIntsRes).Sum; got != 60 {
		t.Fatalf("Sum = %d, want 60", got)
	}
}

// S6: many concurrent async calls against the same service each land on
// their own connection and return the correct, independently-computed
// result — no cross-talk between in-flight requests.
func TestConcurrentAsyncServiceCalls(t *testing.T) {
	m := master.NewInMemoryMaster()
	adder := mustNode(t, "adder", m)
	caller := mustNode(t, "caller", m)

	svcMD5 := (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
	_, err := adder.AdvertiseService("/add_two_ints", reqFactory, resFactory, svcMD5, twoIntsHandler)
	if err != nil {
		t.Fatalf("AdvertiseService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := caller.WaitForService(ctx, "/add_two_ints"); err != nil {
		t.Fatalf("WaitForService: %v", err)
	}

	client, err := caller.ServiceClient("/add_two_ints", reqFactory, resFactory, svcMD5)
	if err != nil {
		t.Fatalf("ServiceClient: %v", err)
	}

	const n = 50
	handles := make([]*ServiceCallHandle, n)
	for i := 0; i < n; i++ {
		handles[i] = client.CallAsync(context.Background(), &rosgo_tutorials.TwoIntsReq{A: int64(i), B: int64(i * 2)})
	}

	var failures int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			res, err := handles[i].Wait(ctx)
			if err != nil {
				t.Errorf("call %d: %v", i, err)
				atomic.AddInt32(&failures, 1)
				return
			}
			want := int64(i) + int64(i*2)
			if got := res.(*rosgo_tutorials.TwoIntsRes).Sum; got != want {
				t.Errorf("call %d: Sum = %d, want %d", i, got, want)
				atomic.AddInt32(&failures, 1)
			}
		}(i)
	}
	wg.Wait()
	if failures > 0 {
		t.Fatalf("%d/%d calls failed", failures, n)
	}
}

// A persistent service client serializes calls over one connection while
// still pairing each response with its request in FIFO order.
func TestPersistentServiceClientPreservesFIFO(t *testing.T) {
	m := master.NewInMemoryMaster()
	adder := mustNode(t, "adder", m)
	caller := mustNode(t, "caller", m)

	svcMD5 := (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
	_, err := adder.AdvertiseService("/add_two_ints", reqFactory, resFactory, svcMD5, twoIntsHandler)
	if err != nil {
		t.Fatalf("AdvertiseService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := caller.WaitForService(ctx, "/add_two_ints"); err != nil {
		t.Fatalf("WaitForService: %v", err)
	}

	client, err := caller.ServiceClient("/add_two_ints", reqFactory, resFactory, svcMD5)
	if err != nil {
		t.Fatalf("ServiceClient: %v", err)
	}
	persistent, err := client.Persistent(context.Background())
	if err != nil {
		t.Fatalf("Persistent: %v", err)
	}
	defer persistent.Close()

	for i := 0; i < 20; i++ {
		res, err := persistent.Call(&rosgo_tutorials.TwoIntsReq{A: int64(i), B: 1})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got, want := res.(*rosgo_tutorials.TwoIntsRes).Sum, int64(i+1); got != want {
			t.Fatalf("call %d: Sum = %d, want %d", i, got, want)
		}
	}
}

// Dropping a publication/subscription/service handle unregisters it from
// the master; a fresh lookup/advertise under the same name succeeds again.
func TestCloseUnregistersFromMaster(t *testing.T) {
	m := master.NewInMemoryMaster()
	n := mustNode(t, "n", m)

	pub, err := n.Advertise("/t", &std_msgs.StringMsg{}, "string data\n", 10, false)
	if err != nil {
		t.Fatalf("Advertise: %v", err)
	}
	if err := n.ClosePublication(pub); err != nil {
		t.Fatalf("ClosePublication: %v", err)
	}

	addrs, err := m.LookupService(context.Background(), "n", "/t")
	if err == nil {
		t.Fatalf("expected no provider after close, got %v", addrs)
	}

	svcMD5 := (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
	srv, err := n.AdvertiseService("/s", reqFactory, resFactory, svcMD5, twoIntsHandler)
	if err != nil {
		t.Fatalf("AdvertiseService: %v", err)
	}
	if err := n.CloseService(srv); err != nil {
		t.Fatalf("CloseService: %v", err)
	}
	if _, err := m.LookupService(context.Background(), "n", "/s"); err == nil {
		t.Fatal("expected service lookup to fail after CloseService")
	}

	// Re-advertising under the same name after close must succeed (no
	// stale NameConflictError left behind).
	if _, err := n.AdvertiseService("/s", reqFactory, resFactory, svcMD5, twoIntsHandler); err != nil {
		t.Fatalf("re-AdvertiseService: %v", err)
	}
}

// A name already registered on this node cannot be registered twice.
func TestDuplicateAdvertiseConflicts(t *testing.T) {
	m := master.NewInMemoryMaster()
	n := mustNode(t, "n", m)

	if _, err := n.Advertise("/t", &std_msgs.StringMsg{}, "string data\n", 10, false); err != nil {
		t.Fatalf("Advertise: %v", err)
	}
	_, err := n.Advertise("/t", &std_msgs.StringMsg{}, "string data\n", 10, false)
	if _, ok := err.(*NameConflictError); !ok {
		t.Fatalf("expected *NameConflictError, got %v", err)
	}
}

// Calling a service that nothing advertises reports rejection rather than
// hanging.
func TestServiceCallNoProviderFails(t *testing.T) {
	m := master.NewInMemoryMaster()
	caller := mustNode(t, "caller", m)

	_, err := caller.ServiceClient("/nope", reqFactory, resFactory, "deadbeef")
	if err != nil {
		t.Fatalf("ServiceClient: %v", err)
	}
	client, _ := caller.ServiceClient("/nope", reqFactory, resFactory, "deadbeef")
	if _, err := client.Call(context.Background(), &rosgo_tutorials.TwoIntsReq{}); err == nil {
		t.Fatal("expected error calling a service with no provider")
	}
}

func waitUntil(t *testing.T, cond func() bool) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("condition never became true")
}
