// Command rosgo-demo boots two in-process nodes against a shared in-memory
// master, wires a std_msgs/String topic between them, and serves a
// rosgo_tutorials/AddTwoInts-style service — the S4/S5 scenarios of
// spec.md §8 run end-to-end over real loopback TCP.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"rosgo/master"
	"rosgo/msgs/rosgo_tutorials"
	"rosgo/msgs/std_msgs"
	"rosgo/node"
	"rosgo/rosconfig"
	"rosgo/wire"
)

func run() error {
	// A real deployment reads ROS_MASTER_URI etc. from the environment via
	// rosconfig.FromEnviron; the demo supplies a minimal config directly
	// since no standalone master daemon exists to point at (spec.md §1).
	cfg := &rosconfig.Config{MasterURI: "demo://in-memory", Remap: map[string]string{}}

	m := master.NewInMemoryMaster()

	talker, err := node.New("talker", cfg, m)
	if err != nil {
		return fmt.Errorf("talker: %w", err)
	}
	defer talker.Close()

	listener, err := node.New("listener", cfg, m)
	if err != nil {
		return fmt.Errorf("listener: %w", err)
	}
	defer listener.Close()

	received := make(chan string, 1)
	_, err = listener.Subscribe("/chatter", "std_msgs/String", (&std_msgs.StringMsg{}).MD5Sum(),
		func() wire.Message { return &std_msgs.StringMsg{} }, 10,
		func(msg wire.Message) {
			received <- msg.(*std_msgs.StringMsg).Data
		})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	sample := &std_msgs.StringMsg{}
	pub, err := talker.Advertise("/chatter", sample, "string data\n", 10, false)
	if err != nil {
		return fmt.Errorf("advertise: %w", err)
	}

	time.Sleep(50 * time.Millisecond) // let registration/connect settle, demo-only
	if err := pub.Publish(&std_msgs.StringMsg{Data: "ping"}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	select {
	case data := <-received:
		fmt.Printf("listener received: %q\n", data)
	case <-time.After(2 * time.Second):
		return fmt.Errorf("timed out waiting for /chatter message")
	}

	adder, err := node.New("adder", cfg, m)
	if err != nil {
		return fmt.Errorf("adder: %w", err)
	}
	defer adder.Close()

	svcMD5 := rosgo_tutorialsServiceMD5()
	_, err = adder.AdvertiseService("/add_two_ints",
		func() wire.Message { return &rosgo_tutorials.TwoIntsReq{} },
		func() wire.Message { return &rosgo_tutorials.TwoIntsRes{} },
		svcMD5,
		func(req wire.Message) (wire.Message, error) {
			r := req.(*rosgo_tutorials.TwoIntsReq)
			return &rosgo_tutorials.TwoIntsRes{Sum: r.A + r.B}, nil
		})
	if err != nil {
		return fmt.Errorf("advertise service: %w", err)
	}

	caller, err := node.New("caller", cfg, m)
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}
	defer caller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := caller.WaitForService(ctx, "/add_two_ints"); err != nil {
		return fmt.Errorf("wait_for_service: %w", err)
	}

	client, err := caller.ServiceClient("/add_two_ints",
		func() wire.Message { return &rosgo_tutorials.TwoIntsReq{} },
		func() wire.Message { return &rosgo_tutorials.TwoIntsRes{} },
		svcMD5)
	if err != nil {
		return fmt.Errorf("service client: %w", err)
	}

	res, err := client.Call(context.Background(), &rosgo_tutorials.TwoIntsReq{A: 48, B: 12})
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	fmt.Printf("48 + 12 = %d\n", res.(*rosgo_tutorials.TwoIntsRes).Sum)
	return nil
}

func rosgo_tutorialsServiceMD5() string {
	return (&rosgo_tutorials.TwoIntsReq{}).MD5Sum()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(rosconfig.ExitCode(err))
	}
}
