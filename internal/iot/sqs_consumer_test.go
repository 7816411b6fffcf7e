package iot

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"toll_plaza/internal/config"
)

// fakeSQS hands out one batch per receive call, then cancels the consumer.
type fakeSQS struct {
	mu       sync.Mutex
	batches  [][]types.Message
	errs     []error
	deleted  []string
	receives int
	cancel   context.CancelFunc
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.WaitTimeSeconds != 20 || in.MaxNumberOfMessages != 10 || in.VisibilityTimeout != 60 {
		return nil, errors.New("unexpected polling parameters")
	}
	i := f.receives
	f.receives++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.batches) {
		f.cancel()
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return &sqs.ReceiveMessageOutput{Messages: f.batches[i]}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeHandler struct {
	bodies []string
	fail   map[string]bool
}

func (h *fakeHandler) HandleDeviceEvent(_ context.Context, body string) error {
	h.bodies = append(h.bodies, body)
	if h.fail[body] {
		return errors.New("database down")
	}
	return nil
}

func message(id, body string) types.Message {
	m := types.Message{MessageId: aws.String(id), ReceiptHandle: aws.String("rh-" + id)}
	if body != "" {
		m.Body = aws.String(body)
	}
	return m
}

func runConsumer(t *testing.T, api *fakeSQS, handler MessageHandler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api.cancel = cancel

	c := NewSQSConsumer(api, &config.Config{SQSCaptureQueueURL: "https://sqs.test/queue"}, handler)
	c.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}

func TestSQSConsumerAcknowledgesHandledMessages(t *testing.T) {
	api := &fakeSQS{batches: [][]types.Message{
		{message("1", `{"message_type":"capture"}`), message("2", "")},
		{message("3", "poison"), message("4", `{"message_type":"heartbeat"}`)},
	}}
	handler := &fakeHandler{fail: map[string]bool{"poison": true}}

	runConsumer(t, api, handler)

	if want := []string{"rh-1", "rh-2", "rh-4"}; !reflect.DeepEqual(api.deleted, want) {
		t.Errorf("deleted = %v, want %v", api.deleted, want)
	}
	if len(handler.bodies) != 3 {
		t.Errorf("handler saw %d bodies, want 3 (empty body skipped)", len(handler.bodies))
	}
}

func TestSQSConsumerRetriesReceiveErrors(t *testing.T) {
	api := &fakeSQS{
		errs:    []error{errors.New("throttled"), nil},
		batches: [][]types.Message{nil, {message("1", "body")}},
	}
	handler := &fakeHandler{}

	runConsumer(t, api, handler)

	if api.receives < 3 {
		t.Errorf("receives = %d, want the consumer to keep polling after an error", api.receives)
	}
	if !reflect.DeepEqual(handler.bodies, []string{"body"}) {
		t.Errorf("handled = %v", handler.bodies)
	}
}
