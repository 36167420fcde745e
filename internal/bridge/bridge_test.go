package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/ipc"
)

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error { f.nacked++; return nil }

type fakeDispatcher struct {
	got    []*ipc.Request
	source string
	fail   string
}

func (d *fakeDispatcher) Handle(source string, req *ipc.Request) *ipc.Response {
	d.source = source
	d.got = append(d.got, req)
	if d.fail != "" {
		return ipc.NewErrorResponse(d.fail)
	}
	resp, _ := ipc.NewOKResponse(nil)
	return resp
}

func newTestConsumer(d Dispatcher) (*Consumer, *[]Reply) {
	var replies []Reply
	c := &Consumer{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:      "test",
		dispatcher: d,
	}
	c.reply = func(ctx context.Context, raw amqp.Delivery, r Reply) error {
		replies = append(replies, r)
		return nil
	}
	return c, &replies
}

func delivery(ack amqp.Acknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
}

func TestHandleDeliveryDispatchesAndAcks(t *testing.T) {
	d := &fakeDispatcher{}
	c, replies := newTestConsumer(d)
	ack := &fakeAck{}

	c.handleDelivery(context.Background(), delivery(ack, `{"id":"m1","type":"launch","payload":{"view_type":"diagnostic"}}`))

	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("expected ack, got acked=%d nacked=%d", ack.acked, ack.nacked)
	}
	if len(d.got) != 1 || d.got[0].Command != ipc.CommandLaunch || d.source != Source {
		t.Fatalf("expected LAUNCH from amqp, got %+v source=%q", d.got, d.source)
	}
	var p ipc.LaunchPayload
	if err := json.Unmarshal(d.got[0].Payload, &p); err != nil || p.ViewType != "diagnostic" {
		t.Fatalf("expected payload passed through, got %s err=%v", d.got[0].Payload, err)
	}
	if len(*replies) != 0 {
		t.Fatalf("expected no reply without reply_to, got %d", len(*replies))
	}
}

func TestHandleDeliveryDeadLettersBadInput(t *testing.T) {
	cases := map[string]string{
		"malformed":  `{not json`,
		"no type":    `{"id":"x"}`,
		"not remote": `{"type":"exit"}`,
	}
	for name, body := range cases {
		d := &fakeDispatcher{}
		c, _ := newTestConsumer(d)
		ack := &fakeAck{}
		c.handleDelivery(context.Background(), delivery(ack, body))
		if ack.nacked != 1 || ack.requeue || ack.acked != 0 {
			t.Fatalf("%s: expected nack without requeue, got %+v", name, ack)
		}
		if len(d.got) != 0 {
			t.Fatalf("%s: expected nothing dispatched, got %d", name, len(d.got))
		}
	}
}

func TestHandleDeliveryFailedCommandRepliesWithError(t *testing.T) {
	d := &fakeDispatcher{fail: "viewer nope not found"}
	c, replies := newTestConsumer(d)
	ack := &fakeAck{}
	raw := delivery(ack, `{"type":"fullscreen","payload":{"viewer_id":"nope"}}`)
	raw.ReplyTo = "replies"
	raw.MessageId = "amqp-id"

	c.handleDelivery(context.Background(), raw)

	if ack.nacked != 1 || ack.requeue {
		t.Fatalf("expected dead-lettered failure, got %+v", ack)
	}
	if len(*replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(*replies))
	}
	r := (*replies)[0]
	if r.ID != "amqp-id" || r.Response.Status != "ERROR" || r.Response.Error != "viewer nope not found" {
		t.Fatalf("expected error reply for amqp-id, got %+v / %+v", r, r.Response)
	}
}

func TestMessageRequest(t *testing.T) {
	for _, typ := range []string{"close-all", "CLOSE_ALL", " close_all "} {
		req, err := Message{Type: typ}.Request()
		if err != nil || req.Command != ipc.CommandCloseAll {
			t.Fatalf("expected %q to map to CLOSE_ALL, got %+v err=%v", typ, req, err)
		}
	}
	for _, typ := range []string{"reload", "exit", "tile"} {
		if _, err := (Message{Type: typ}).Request(); err == nil {
			t.Fatalf("expected %q to be refused", typ)
		}
	}
}

func TestTopologyNames(t *testing.T) {
	topo := TopologyFromConfig(config.DefaultConfig().Bridge.AMQP)
	if topo.Exchange != "viewwall" || topo.Queue != "viewwall.commands" || topo.RoutingKey != "viewwall.#" {
		t.Fatalf("expected default topology, got %+v", topo)
	}
	if topo.DeadLetterQueue() != "viewwall.commands.dlq" || topo.DeadLetterExchange() != "viewwall.dlq" {
		t.Fatalf("expected dlq names, got %s %s", topo.DeadLetterQueue(), topo.DeadLetterExchange())
	}
}

func TestNextBackoff(t *testing.T) {
	d := time.Duration(0)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second, 30 * time.Second}
	for i, w := range want {
		d = nextBackoff(d)
		if d != w {
			t.Fatalf("step %d: expected %v, got %v", i, w, d)
		}
	}
}

func TestRunDisabledWithoutURL(t *testing.T) {
	if err := Run(context.Background(), config.AMQPConfig{}, &fakeDispatcher{}, nil); err != nil {
		t.Fatalf("expected disabled bridge to return nil, got %v", err)
	}
}
